package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"chatrelay/internal/models"
)

// Responder produces the model's reply to message given the earlier turns.
// An empty reply with a nil error means the model returned no usable text.
type Responder interface {
	Reply(ctx context.Context, message string, history []models.HistoryEntry) (string, error)
}

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// MaxMessageRunes caps a single user message.
const MaxMessageRunes = 8000

// validateTurn rejects input the upstream model would refuse anyway.
func validateTurn(message string, history []models.HistoryEntry) error {
	if utf8.RuneCountInString(message) > MaxMessageRunes {
		return &ValidationError{Message: fmt.Sprintf("Message is too long (max %d characters)", MaxMessageRunes)}
	}
	for i, h := range history {
		if h.Role != models.RoleUser && h.Role != models.RoleModel {
			return &ValidationError{Message: fmt.Sprintf("Invalid role %q in history entry %d", h.Role, i)}
		}
	}
	return nil
}

// tokenBucket bounds concurrent upstream calls.
type tokenBucket chan struct{}

func newTokenBucket(n int) tokenBucket {
	if n < 1 {
		n = 1
	}
	b := make(tokenBucket, n)
	for i := 0; i < n; i++ {
		b <- struct{}{}
	}
	return b
}
