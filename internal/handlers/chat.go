package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatrelay/internal/models"
	"chatrelay/internal/services"
)

const (
	maxChatBodySize = 1 << 20
	recordTimeout   = 5 * time.Second

	unclearReply = "I apologize, I received an unclear response from the AI."
)

type ChatHandler struct {
	responder services.Responder
	recorder  services.ExchangeRecorder
}

func NewChatHandler(responder services.Responder, recorder services.ExchangeRecorder) *ChatHandler {
	if recorder == nil {
		recorder = services.NopRecorder{}
	}
	return &ChatHandler{
		responder: responder,
		recorder:  recorder,
	}
}

// Chat answers POST /chat with {"response": ...} or {"error": ...}.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No message provided", r))
		return
	}

	reply, err := h.responder.Reply(r.Context(), req.Message, req.History)
	if err != nil {
		log.Printf("Error calling AI model: %v", err)
		handleServiceError(w, r, err)
		return
	}
	if strings.TrimSpace(reply) == "" {
		reply = unclearReply
	}

	h.record(r, req.Message, reply)

	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

// record hands the exchange to the recorder. Failures are logged and never
// affect the response.
func (h *ChatHandler) record(r *http.Request, userText, botText string) {
	sessionID, err := uuid.Parse(r.Header.Get("X-Session-ID"))
	if err != nil {
		sessionID = uuid.New()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), recordTimeout)
	defer cancel()

	ex := models.Exchange{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserText:  userText,
		BotText:   botText,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.recorder.Record(ctx, ex); err != nil {
		log.Printf("Failed to record exchange for session %s: %v", sessionID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: r.Header.Get("X-Request-ID"),
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	var rateErr *services.RateLimitError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", validationErr.Message, r))
	case errors.As(err, &rateErr):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", rateErr.Message, r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to communicate with AI model.", r))
	}
}
