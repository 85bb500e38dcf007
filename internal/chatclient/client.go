// Package chatclient delivers chat messages to a remote endpoint with
// bounded retries, keeps the conversation history, and reports every
// outcome to a display surface.
package chatclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"chatrelay/internal/models"
)

const (
	DefaultMaxAttempts = 5
	DefaultBackoffBase = time.Second
)

// Notices shown to the user for outcomes that are not a model reply.
const (
	EmptyResponseNotice = "The server is waking up and didn't send a reply yet. Please try again in a moment."
	transportNotice     = "Oops! Could not connect to the chat server. Error: %s"
	serverNotice        = "Oops! The chat server returned an error: %s"
)

// Sender tells the surface who authored a displayed message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Surface renders messages and the loading state. The client calls it
// from the goroutine that runs Submit.
type Surface interface {
	DisplayMessage(text string, sender Sender)
	ToggleLoading(show bool)
}

// Outcome is how a submission settled.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmpty
	OutcomeFailed
)

type Client struct {
	endpoint    string
	surface     Surface
	httpClient  *http.Client
	maxAttempts int
	backoff     BackoffFunc
	sleep       Sleeper
	sessionID   uuid.UUID
	token       string
	logger      *log.Logger

	inFlight atomic.Bool

	mu      sync.Mutex
	history []models.Message
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxAttempts caps the number of delivery attempts per submission.
// Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithBackoff(b BackoffFunc) Option {
	return func(c *Client) { c.backoff = b }
}

func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

func WithSessionID(id uuid.UUID) Option {
	return func(c *Client) { c.sessionID = id }
}

func WithBearerToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(endpoint string, surface Surface, opts ...Option) *Client {
	c := &Client{
		endpoint:    endpoint,
		surface:     surface,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		maxAttempts: DefaultMaxAttempts,
		backoff:     ExponentialBackoff(DefaultBackoffBase),
		sleep:       sleepContext,
		sessionID:   uuid.New(),
		logger:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID identifies this conversation to the backend.
func (c *Client) SessionID() uuid.UUID { return c.sessionID }

// InFlight reports whether a submission is outstanding.
func (c *Client) InFlight() bool { return c.inFlight.Load() }

// History returns a copy of the confirmed conversation, oldest first.
func (c *Client) History() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.history))
	copy(out, c.history)
	return out
}

// Reset forgets the conversation. It refuses while a request is in flight.
func (c *Client) Reset() error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer c.inFlight.Store(false)

	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
	return nil
}

// Submit echoes userText to the surface, delivers it, and displays the
// reply or a notice describing why there is none. Blank input and
// submissions made while another one is in flight are rejected without
// touching the surface or the history. Delivery failures are shown to the
// user rather than returned.
func (c *Client) Submit(ctx context.Context, userText string) error {
	text := strings.TrimSpace(userText)
	if text == "" {
		return ErrEmptyMessage
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}

	c.surface.DisplayMessage(text, SenderUser)
	c.surface.ToggleLoading(true)
	defer func() {
		c.inFlight.Store(false)
		c.surface.ToggleLoading(false)
	}()

	req := models.NewChatRequest(text, c.History())
	resp, err := c.send(ctx, req)

	switch outcome(resp, err) {
	case OutcomeSuccess:
		c.mu.Lock()
		c.history = append(c.history,
			models.Message{Role: models.RoleUser, Text: text},
			models.Message{Role: models.RoleModel, Text: resp.Response},
		)
		c.mu.Unlock()
		c.surface.DisplayMessage(resp.Response, SenderBot)
	case OutcomeEmpty:
		c.surface.DisplayMessage(EmptyResponseNotice, SenderBot)
	default:
		c.logger.Printf("chat request failed: %v", err)
		c.surface.DisplayMessage(failureNotice(err), SenderBot)
	}
	return nil
}

func outcome(resp models.ChatResponse, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFailed
	case resp.Response == "":
		return OutcomeEmpty
	default:
		return OutcomeSuccess
	}
}

func failureNotice(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) && !serverErr.Temporary() {
		msg := serverErr.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", serverErr.StatusCode)
		}
		return fmt.Sprintf(serverNotice, msg)
	}
	return fmt.Sprintf(transportNotice, err.Error())
}
