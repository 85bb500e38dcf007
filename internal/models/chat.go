package models

import "strings"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single turn of the conversation as the client keeps it.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Part is one text fragment of a history entry.
type Part struct {
	Text string `json:"text"`
}

// HistoryEntry is the wire shape of a past turn. The parts wrapping is
// what the chat backend expects, so it is kept even for single-text turns.
type HistoryEntry struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Text joins the entry's parts.
func (h HistoryEntry) Text() string {
	var b strings.Builder
	for _, p := range h.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history"`
}

// ChatResponse is the reply from the chat endpoint. An empty Response is
// valid and means the backend had nothing to say yet.
type ChatResponse struct {
	Response string `json:"response,omitempty"`
}

// NewChatRequest builds the wire request from a conversation log.
func NewChatRequest(message string, history []Message) ChatRequest {
	entries := make([]HistoryEntry, 0, len(history))
	for _, m := range history {
		entries = append(entries, HistoryEntry{Role: m.Role, Parts: []Part{{Text: m.Text}}})
	}
	return ChatRequest{Message: message, History: entries}
}
