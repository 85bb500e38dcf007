package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chatrelay/internal/models"
)

const (
	defaultTranscriptLimit = 100
	maxTranscriptLimit     = 500
)

type transcriptRepository interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.Exchange, error)
}

type TranscriptHandler struct {
	repo transcriptRepository
}

func NewTranscriptHandler(repo transcriptRepository) *TranscriptHandler {
	return &TranscriptHandler{repo: repo}
}

// List answers GET /transcripts/{session}?limit=N.
func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "session"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	limit := defaultTranscriptLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid limit", r))
			return
		}
		limit = min(n, maxTranscriptLimit)
	}

	exchanges, err := h.repo.ListBySession(r.Context(), sessionID, limit)
	if err != nil {
		log.Printf("Failed to list transcripts for session %s: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load transcript", r))
		return
	}
	if exchanges == nil {
		exchanges = []models.Exchange{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"exchanges":  exchanges,
	})
}
