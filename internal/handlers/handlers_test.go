package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"chatrelay/internal/models"
	"chatrelay/internal/services"
)

type fakeResponder struct {
	reply   string
	err     error
	message string
	history []models.HistoryEntry
	calls   int
}

func (f *fakeResponder) Reply(ctx context.Context, message string, history []models.HistoryEntry) (string, error) {
	f.calls++
	f.message = message
	f.history = history
	return f.reply, f.err
}

type fakeRecorder struct {
	exchanges []models.Exchange
	err       error
}

func (f *fakeRecorder) Record(ctx context.Context, ex models.Exchange) error {
	f.exchanges = append(f.exchanges, ex)
	return f.err
}

func postChat(t *testing.T, h *ChatHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.Chat(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func TestChatHandler_Success(t *testing.T) {
	responder := &fakeResponder{reply: "Hi there"}
	recorder := &fakeRecorder{}
	h := NewChatHandler(responder, recorder)

	session := uuid.New()
	body := `{"message":"How are you?","history":[{"role":"user","parts":[{"text":"Hello"}]},{"role":"model","parts":[{"text":"Hey"}]}]}`
	rr := postChat(t, h, body, map[string]string{"X-Session-ID": session.String()})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Response != "Hi there" {
		t.Errorf("Expected response 'Hi there', got %q", resp.Response)
	}

	if responder.message != "How are you?" {
		t.Errorf("Expected message to be forwarded, got %q", responder.message)
	}
	if len(responder.history) != 2 || responder.history[1].Role != models.RoleModel || responder.history[1].Text() != "Hey" {
		t.Errorf("Expected history to be forwarded, got %+v", responder.history)
	}

	if len(recorder.exchanges) != 1 {
		t.Fatalf("Expected 1 recorded exchange, got %d", len(recorder.exchanges))
	}
	ex := recorder.exchanges[0]
	if ex.SessionID != session || ex.UserText != "How are you?" || ex.BotText != "Hi there" {
		t.Errorf("Unexpected exchange: %+v", ex)
	}
}

func TestChatHandler_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `{"message":`, "Invalid request body"},
		{"missing message", `{"history":[]}`, "No message provided"},
		{"blank message", `{"message":"   "}`, "No message provided"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			responder := &fakeResponder{reply: "unused"}
			h := NewChatHandler(responder, nil)

			rr := postChat(t, h, tc.body, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rr.Code)
			}
			if resp := decodeError(t, rr); resp.Error != tc.message {
				t.Errorf("Expected error %q, got %q", tc.message, resp.Error)
			}
			if responder.calls != 0 {
				t.Errorf("Expected the model not to be called")
			}
		})
	}
}

func TestChatHandler_ResponderErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"upstream failure", errors.New("boom"), http.StatusInternalServerError, "Failed to communicate with AI model."},
		{"rate limited", &services.RateLimitError{Message: "timeout waiting for Gemini rate slot"}, http.StatusTooManyRequests, "timeout waiting for Gemini rate slot"},
		{"validation", &services.ValidationError{Message: "too long"}, http.StatusBadRequest, "too long"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			h := NewChatHandler(&fakeResponder{err: tc.err}, recorder)

			rr := postChat(t, h, `{"message":"hi"}`, map[string]string{"X-Request-ID": "req-1"})
			if rr.Code != tc.status {
				t.Fatalf("Expected status %d, got %d", tc.status, rr.Code)
			}
			resp := decodeError(t, rr)
			if resp.Error != tc.message {
				t.Errorf("Expected error %q, got %q", tc.message, resp.Error)
			}
			if resp.RequestID != "req-1" {
				t.Errorf("Expected request id to be echoed, got %q", resp.RequestID)
			}
			if len(recorder.exchanges) != 0 {
				t.Errorf("Expected failed exchanges not to be recorded")
			}
		})
	}
}

func TestChatHandler_UnclearReply(t *testing.T) {
	h := NewChatHandler(&fakeResponder{reply: "  "}, nil)

	rr := postChat(t, h, `{"message":"hi"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp models.ChatResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Response != unclearReply {
		t.Errorf("Expected fallback reply, got %q", resp.Response)
	}
}

func TestChatHandler_RecorderFailureDoesNotFailRequest(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("redis down")}
	h := NewChatHandler(&fakeResponder{reply: "ok"}, recorder)

	rr := postChat(t, h, `{"message":"hi"}`, map[string]string{"X-Session-ID": "not-a-uuid"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if len(recorder.exchanges) != 1 {
		t.Fatalf("Expected the recorder to be called once, got %d", len(recorder.exchanges))
	}
	if recorder.exchanges[0].SessionID == uuid.Nil {
		t.Errorf("Expected a generated session id for an invalid header")
	}
}

func TestChatHandler_OversizedBody(t *testing.T) {
	h := NewChatHandler(&fakeResponder{reply: "ok"}, nil)

	body := `{"message":"` + strings.Repeat("a", maxChatBodySize) + `"}`
	rr := postChat(t, h, body, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
}
