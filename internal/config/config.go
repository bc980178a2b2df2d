package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Trigger  TriggerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// TriggerConfig holds configuration for the due-rule processing trigger:
// the shared secret its endpoint is authenticated with, the cron schedule
// of the in-process trigger, and the endpoint's rate limit.
type TriggerConfig struct {
	InternalAPIKey string
	CronSchedule   string
	// RatePerMinute bounds how often the trigger endpoint may be invoked.
	// Due processing is designed for low-frequency invocation.
	RatePerMinute int
	RateBurst     int
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/pocket_ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Trigger: TriggerConfig{
			InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),
			CronSchedule:   getEnv("TRIGGER_CRON", "0 * * * *"),
			RatePerMinute:  getEnvInt("TRIGGER_RATE_PER_MINUTE", 2),
			RateBurst:      getEnvInt("TRIGGER_RATE_BURST", 2),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
