// Package tui is the terminal chat widget: a message log, an input line and
// a typing indicator driven by a chatclient.Client.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"chatrelay/internal/chatclient"
	"chatrelay/internal/render"
)

const resetCommand = "/reset"

type chatSession interface {
	Submit(ctx context.Context, text string) error
	Reset() error
}

type submitDoneMsg struct{ err error }

type entry struct {
	text   string
	sender chatclient.Sender
}

// Model is the bubbletea model of the chat widget.
type Model struct {
	ctx     context.Context
	client  chatSession
	input   textinput.Model
	spinner spinner.Model
	entries []entry
	loading bool
	status  string
	width   int
}

func New(ctx context.Context, client chatSession) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = botStyle

	return Model{
		ctx:     ctx,
		client:  client,
		input:   ti,
		spinner: sp,
		width:   80,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case DisplayMsg:
		m.entries = append(m.entries, entry{text: msg.Text, sender: msg.Sender})
		return m, nil

	case LoadingMsg:
		m.loading = bool(msg)
		if m.loading {
			m.input.Blur()
			return m, m.spinner.Tick
		}
		return m, m.input.Focus()

	case submitDoneMsg:
		if errors.Is(msg.err, chatclient.ErrInFlight) {
			m.status = "Still waiting for the previous reply."
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	m.status = ""

	if text == resetCommand {
		if err := m.client.Reset(); err != nil {
			m.status = "Can't reset while a reply is pending."
			return m, nil
		}
		m.entries = nil
		m.status = "Conversation cleared."
		return m, nil
	}

	client, ctx := m.client, m.ctx
	return m, func() tea.Msg {
		return submitDoneMsg{err: client.Submit(ctx, text)}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AI Chat") + "\n\n")

	for _, e := range m.entries {
		label := botStyle.Render("Bot")
		if e.sender == chatclient.SenderUser {
			label = userStyle.Render("You")
		}
		b.WriteString(label + "  " + render.Terminal(e.text) + "\n\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View() + " " + hintStyle.Render("Typing...") + "\n\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	b.WriteString(inputStyle.Width(width).Render(m.input.View()) + "\n")
	b.WriteString(hintStyle.Render("enter send • /reset clear history • ctrl+c quit") + "\n")
	return b.String()
}
