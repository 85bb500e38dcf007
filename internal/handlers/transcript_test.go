package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chatrelay/internal/models"
)

type fakeTranscriptRepo struct {
	exchanges []models.Exchange
	err       error
	gotLimit  int
	gotID     uuid.UUID
}

func (f *fakeTranscriptRepo) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.Exchange, error) {
	f.gotID = sessionID
	f.gotLimit = limit
	return f.exchanges, f.err
}

func serveTranscript(h *TranscriptHandler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/transcripts/{session}", h.List)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestTranscriptHandler_List(t *testing.T) {
	session := uuid.New()
	repo := &fakeTranscriptRepo{exchanges: []models.Exchange{
		{ID: uuid.New(), SessionID: session, UserText: "Hello", BotText: "Hi there", CreatedAt: time.Now().UTC()},
	}}
	h := NewTranscriptHandler(repo)

	rr := serveTranscript(h, "/transcripts/"+session.String()+"?limit=1000")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if repo.gotID != session {
		t.Errorf("Expected session %s, got %s", session, repo.gotID)
	}
	if repo.gotLimit != maxTranscriptLimit {
		t.Errorf("Expected limit to be capped at %d, got %d", maxTranscriptLimit, repo.gotLimit)
	}

	var body struct {
		SessionID uuid.UUID         `json:"session_id"`
		Exchanges []models.Exchange `json:"exchanges"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Exchanges) != 1 || body.Exchanges[0].BotText != "Hi there" {
		t.Errorf("Unexpected exchanges: %+v", body.Exchanges)
	}
}

func TestTranscriptHandler_EmptySessionReturnsArray(t *testing.T) {
	h := NewTranscriptHandler(&fakeTranscriptRepo{})

	rr := serveTranscript(h, "/transcripts/"+uuid.NewString())
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var body map[string]json.RawMessage
	json.NewDecoder(rr.Body).Decode(&body)
	if string(body["exchanges"]) != "[]" {
		t.Errorf("Expected empty array, got %s", body["exchanges"])
	}
}

func TestTranscriptHandler_BadInput(t *testing.T) {
	h := NewTranscriptHandler(&fakeTranscriptRepo{})

	for _, path := range []string{"/transcripts/not-a-uuid", "/transcripts/" + uuid.NewString() + "?limit=0", "/transcripts/" + uuid.NewString() + "?limit=x"} {
		if rr := serveTranscript(h, path); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, rr.Code)
		}
	}
}

func TestTranscriptHandler_RepoError(t *testing.T) {
	h := NewTranscriptHandler(&fakeTranscriptRepo{err: errors.New("db down")})

	rr := serveTranscript(h, "/transcripts/"+uuid.NewString())
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rr.Code)
	}
}
