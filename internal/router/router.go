package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chatrelay/internal/handlers"
	"chatrelay/internal/middleware"
	"chatrelay/internal/websocket"
)

// New builds the relay's routes. transcriptHandler and wsHub are optional
// and their routes are only mounted when they are non-nil.
func New(
	jwtAuth *middleware.JWTAuth,
	chatLimiter *middleware.RateLimiter,
	chatHandler *handlers.ChatHandler,
	transcriptHandler *handlers.TranscriptHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Chat ────
	r.Group(func(r chi.Router) {
		if chatLimiter != nil {
			r.Use(chatLimiter.Middleware)
		}
		r.Use(jwtAuth.Middleware)
		r.Post("/chat", chatHandler.Chat)
	})

	// ──── Transcripts ────
	if transcriptHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/transcripts/{session}", transcriptHandler.List)
		})
	}

	// ──── WebSocket ────
	if wsHub != nil {
		r.Get("/ws", wsHub.HandleWebSocket)
	}

	return r
}
