package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay/internal/config"
	"chatrelay/internal/database"
	"chatrelay/internal/handlers"
	"chatrelay/internal/middleware"
	"chatrelay/internal/repository"
	"chatrelay/internal/router"
	"chatrelay/internal/services"
	"chatrelay/internal/websocket"
	"chatrelay/internal/worker"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "issue-token" {
		issueToken(os.Args[2:])
		return
	}

	log.Println("🚀 Starting chat relay...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize AI Responder ────
	var responder services.Responder
	switch cfg.AIProvider {
	case "openai":
		responder = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.SystemInstruction)
		log.Printf("✓ OpenAI-compatible client initialized (%s)", cfg.OpenAIModel)
	default:
		geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SystemInstruction, cfg.GeminiConcurrentReqs)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiService.Close()
		responder = geminiService
		log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)
	}

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	if jwtAuth.Enabled() {
		log.Println("✓ Bearer auth enabled")
	}

	// ──── Step 3: Initialize Redis Clients (optional) ────
	var (
		recorder services.ExchangeRecorder = services.NopRecorder{}
		redisClients *database.RedisClients
		wsHub        *websocket.Hub
	)
	if cfg.RedisURL != "" {
		var err error
		redisClients, err = database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		recorder = services.NewRedisRecorder(redisClients.Queue)
		wsHub = websocket.NewHub(redisClients.PubSub, jwtAuth)
		log.Println("✓ Redis connected, WebSocket hub started")
	}

	// ──── Step 4: Initialize PostgreSQL (optional) ────
	var (
		transcriptHandler *handlers.TranscriptHandler
		workerPool        *worker.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, database.Migrations()); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		transcriptRepo := repository.NewTranscriptRepo(pool)
		transcriptHandler = handlers.NewTranscriptHandler(transcriptRepo)

		// ──── Step 5: Start Transcript Worker Pool ────
		if redisClients != nil {
			workerPool = worker.NewPool(redisClients.Queue, transcriptRepo, cfg.WorkerCount)
			workerPool.Start()
		} else {
			log.Println("! REDIS_URL not set, exchanges will not be persisted")
		}
	}

	// ──── Step 6: Start HTTP Server ────
	chatLimiter := middleware.NewRateLimiter(cfg.ChatRateLimitPerMin, time.Minute)
	defer chatLimiter.Stop()

	r := router.New(
		jwtAuth,
		chatLimiter,
		handlers.NewChatHandler(responder, recorder),
		transcriptHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Gemini replies can take a while under load
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)

		if workerPool != nil {
			workerPool.Stop()
		}
	}()

	log.Printf("✓ Chat relay ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: POST http://localhost:%s/chat", cfg.Port)
	if wsHub != nil {
		log.Printf("  WS:   ws://localhost:%s/ws?session=<id>", cfg.Port)
	}

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// issueToken prints a bearer token for the subject given as the first
// argument, signed with JWT_SECRET.
func issueToken(args []string) {
	subject := "chat-cli"
	if len(args) > 0 {
		subject = args[0]
	}

	jwtAuth := middleware.NewJWTAuth(config.LoadJWTSecret())
	if !jwtAuth.Enabled() {
		log.Fatal("✗ JWT_SECRET is not set")
	}

	token, err := jwtAuth.GenerateAccessToken(subject, 30*24*time.Hour)
	if err != nil {
		log.Fatalf("✗ Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
