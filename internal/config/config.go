package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration, read from the environment.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	HoldTTL       time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleTokenJSON    string
	GoogleCalendarID   string

	SyncQueueSize  int
	SyncRetryMax   int
	SyncRetryDelay time.Duration
	SyncTimeout    time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_HMAC_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		HoldTTL:       getDuration("SLOT_HOLD_TTL", 30*time.Second),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		GoogleTokenJSON:    getEnv("GOOGLE_TOKEN_JSON", ""),
		GoogleCalendarID:   getEnv("GOOGLE_CALENDAR_ID", "primary"),

		SyncQueueSize:  getInt("CALENDAR_SYNC_QUEUE_SIZE", 64),
		SyncRetryMax:   getInt("CALENDAR_SYNC_RETRY_MAX", 2),
		SyncRetryDelay: getDuration("CALENDAR_SYNC_RETRY_DELAY", 2*time.Second),
		SyncTimeout:    getDuration("CALENDAR_SYNC_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
