package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultSystemInstruction = "You are a friendly and helpful AI Assistant. You should respond directly and concisely to user queries. Keep your responses to 2-3 sentences max. Use clear and encouraging language."

type Config struct {
	// Server
	Port string
	Env  string

	// AI provider: "gemini" or "openai"
	AIProvider        string
	SystemInstruction string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// OpenAI-compatible endpoint
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Rate limiting for /chat
	ChatRateLimitPerMin int

	// Optional transcript pipeline; empty disables it
	RedisURL    string
	DatabaseURL string
	WorkerCount int

	// Optional bearer auth; empty disables it
	JWTSecret string

	// CORS origin
	FrontendURL string
}

// ClientConfig configures the chat client and terminal widget.
type ClientConfig struct {
	Endpoint    string
	MaxAttempts int
	BackoffBase time.Duration
	Token       string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "5000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		AIProvider:           getEnvOrDefault("AI_PROVIDER", "gemini"),
		SystemInstruction:    getEnvOrDefault("SYSTEM_INSTRUCTION", defaultSystemInstruction),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		OpenAIBaseURL:        getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:          getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ChatRateLimitPerMin:  getEnvAsIntOrDefault("CHAT_RATE_LIMIT_PER_MIN", 30),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		WorkerCount:          getEnvAsIntOrDefault("WORKER_COUNT", 2),
		JWTSecret:            getEnvOrDefault("JWT_SECRET", ""),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "*"),
	}

	switch cfg.AIProvider {
	case "gemini":
		cfg.GeminiAPIKey = mustGetEnv("GEMINI_API_KEY")
	case "openai":
		cfg.OpenAIAPIKey = mustGetEnv("OPENAI_API_KEY")
	default:
		panic(fmt.Sprintf("unsupported AI_PROVIDER %q (expected gemini or openai)", cfg.AIProvider))
	}

	return cfg
}

func LoadClient() *ClientConfig {
	godotenv.Load()

	return &ClientConfig{
		Endpoint:    getEnvOrDefault("CHAT_ENDPOINT", "http://127.0.0.1:5000/chat"),
		MaxAttempts: getEnvAsIntOrDefault("CHAT_MAX_ATTEMPTS", 5),
		BackoffBase: getEnvAsDurationOrDefault("CHAT_BACKOFF_BASE", time.Second),
		Token:       getEnvOrDefault("CHAT_TOKEN", ""),
	}
}

// LoadJWTSecret reads only JWT_SECRET, for tooling that must not require
// provider credentials.
func LoadJWTSecret() string {
	godotenv.Load()
	return os.Getenv("JWT_SECRET")
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}
