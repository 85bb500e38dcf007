package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"chatrelay/internal/chatclient"
)

// DisplayMsg carries a message the chat client wants shown.
type DisplayMsg struct {
	Text   string
	Sender chatclient.Sender
}

// LoadingMsg switches the typing indicator.
type LoadingMsg bool

// Surface forwards chat client callbacks into a running program. Callbacks
// made before Attach are dropped.
type Surface struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ chatclient.Surface = (*Surface)(nil)

func NewSurface() *Surface {
	return &Surface{}
}

// Attach routes callbacks to send, usually (*tea.Program).Send.
func (s *Surface) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *Surface) DisplayMessage(text string, sender chatclient.Sender) {
	s.dispatch(DisplayMsg{Text: text, Sender: sender})
}

func (s *Surface) ToggleLoading(show bool) {
	s.dispatch(LoadingMsg(show))
}

func (s *Surface) dispatch(msg tea.Msg) {
	s.mu.RLock()
	send := s.send
	s.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}
