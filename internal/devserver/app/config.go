package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer              string        // Issuer claim for minted tokens (default: lobby-devserver)
	TokenTTL            time.Duration // Lifetime of minted tokens (default: 12h)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: text)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	// Seed account, created at start-up when SeedUsername is set.
	SeedUsername string
	SeedPassword string
	SeedEmail    string
	SeedGroup    string
	SeedVIPDays  int
}

func LoadConfig() Config {
	return Config{
		Issuer:              getEnvOrDefault("DEVSERVER_ISSUER", "lobby-devserver"),
		TokenTTL:            getEnvDurationOrDefault("DEVSERVER_TOKEN_TTL", 12*time.Hour),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "text"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		SeedUsername:        getEnvOrDefault("DEVSERVER_SEED_USERNAME", "demo"),
		SeedPassword:        getEnvOrDefault("DEVSERVER_SEED_PASSWORD", "demo"),
		SeedEmail:           getEnvOrDefault("DEVSERVER_SEED_EMAIL", "demo@example.com"),
		SeedGroup:           getEnvOrDefault("DEVSERVER_SEED_GROUP", "player"),
		SeedVIPDays:         getEnvIntOrDefault("DEVSERVER_SEED_VIP_DAYS", 30),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
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

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
