package app

import (
	"os"
	"strconv"
	"time"
)

// Store modes.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
)

type Config struct {
	APIURL         string        // Base URL of the game service (default: http://localhost:8080)
	AuthURL        string        // External single sign-on page (default: http://localhost:8080/sso)
	AppURL         string        // Base URL the client considers itself served from (default: http://localhost:3000)
	LandingPath    string        // Route shown after login (default: /lobby)
	LoginPath      string        // Local login route (default: /login)
	StoreMode      string        // Credential persistence, file or memory (default: file)
	StoreFile      string        // SQLite file for the file store (default: lobby.db)
	MasterKeyPath  string        // File holding the at-rest key material
	MasterKey      string        // At-rest key material when no key file is set
	RequestTimeout time.Duration // Per-request timeout (default: 10s)
	RateLimitRPS   float64       // Outbound request rate limit, 0 disables (default: 0)
	AvatarURL      string        // Avatar service base (default: https://weavatar.com/avatar)
	Env            string        // Environment (dev, staging, prod) (default: dev)
	LogLevel       string        // Log level (debug, info, warn, error) (default: warn)
	LogFormat      string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		APIURL:         getEnvOrDefault("LOBBY_API_URL", "http://localhost:8080"),
		AuthURL:        getEnvOrDefault("LOBBY_AUTH_URL", "http://localhost:8080/sso"),
		AppURL:         getEnvOrDefault("LOBBY_APP_URL", "http://localhost:3000"),
		LandingPath:    getEnvOrDefault("LOBBY_LANDING_PATH", "/lobby"),
		LoginPath:      getEnvOrDefault("LOBBY_LOGIN_PATH", "/login"),
		StoreMode:      getEnvOrDefault("LOBBY_STORE_MODE", StoreFile),
		StoreFile:      getEnvOrDefault("LOBBY_STORE_FILE", "lobby.db"),
		MasterKeyPath:  os.Getenv("LOBBY_MASTER_KEY_PATH"),
		MasterKey:      os.Getenv("LOBBY_MASTER_KEY"),
		RequestTimeout: getEnvDurationOrDefault("LOBBY_REQUEST_TIMEOUT", 10*time.Second),
		RateLimitRPS:   getEnvFloatOrDefault("LOBBY_RATE_LIMIT_RPS", 0),
		AvatarURL:      getEnvOrDefault("LOBBY_AVATAR_URL", "https://weavatar.com/avatar"),
		Env:            getEnvOrDefault("ENV", "dev"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
