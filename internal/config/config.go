package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Facebook / Messenger platform
	FBPageAccessToken string
	FBAppSecret       string
	FBVerifyToken     string
	FBPageID          string
	GraphAPIBaseURL   string
	AgentInboxAppID   int64

	// Gemini AI fallback
	GeminiAPIKey  string
	GeminiModelID string

	// Telegram operator alerts
	TelegramBotToken string
	TelegramChatID   string
	AlertCooldown    time.Duration

	// Outbound collaborator timeout (Graph API, Telegram, profile lookup)
	OutboundTimeout time.Duration

	// Replay guard retention for processed webhook events
	EventDedupTTL time.Duration

	// Financing defaults passed into the amortization calculator
	BankRateDefault     float64
	PagibigRateDefault  float64
	BankDPTermMonths    int
	PagibigDPTermMonths int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		FBPageAccessToken: getEnv("FB_PAGE_ACCESS_TOKEN", ""),
		FBAppSecret:       getEnv("FB_APP_SECRET", ""),
		FBVerifyToken:     getEnv("FB_VERIFY_TOKEN", ""),
		FBPageID:          getEnv("FB_PAGE_ID", ""),
		GraphAPIBaseURL:   getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v21.0"),
		AgentInboxAppID:   getEnvAsInt64("AGENT_INBOX_APP_ID", 263902037430900),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		AlertCooldown:    getEnvAsDuration("ALERT_COOLDOWN", 30*time.Minute),

		OutboundTimeout: getEnvAsDuration("OUTBOUND_TIMEOUT", 10*time.Second),
		EventDedupTTL:   getEnvAsDuration("EVENT_DEDUP_TTL", 24*time.Hour),

		BankRateDefault:     getEnvAsFloat("BANK_RATE_DEFAULT", 8.0),
		PagibigRateDefault:  getEnvAsFloat("PAGIBIG_RATE_DEFAULT", 9.0),
		BankDPTermMonths:    getEnvAsInt("BANK_DP_TERM_MONTHS", 12),
		PagibigDPTermMonths: getEnvAsInt("PAGIBIG_DP_TERM_MONTHS", 16),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
