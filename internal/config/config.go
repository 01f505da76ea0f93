// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// telegram
	TGApiID      int
	TGApiHash    string
	TGSessionStr string

	// google sheets
	SheetTitle      string
	WorksheetName   string
	CredentialsFile string

	// channel list and keyword filters
	ChannelsFile string

	// gotgproto session/peer cache (sqlite)
	SessionDB string

	// nats, optional; empty disables event publishing
	NatsURL string

	// telegram api rate limiting
	RateRPS   float64
	RateBurst int

	// logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
// Required credentials are checked separately by Validate.
func Load() (*Config, error) {
	cfg := &Config{
		TGApiID:         getEnvInt("TG_API_ID", 0),
		TGApiHash:       getEnv("TG_API_HASH", ""),
		TGSessionStr:    getEnv("TG_SESSION_STRING", ""),
		SheetTitle:      getEnv("GSHEET_TITLE", "Telegram channel posts"),
		WorksheetName:   getEnv("SHEET_NAME", "Posts"),
		CredentialsFile: getEnv("GCP_CREDENTIALS_FILE", "gcp_sa.json"),
		ChannelsFile:    getEnv("CHANNELS_FILE", "channels.yaml"),
		SessionDB:       getEnv("SESSION_DB", "grabber_session.db"),
		NatsURL:         getEnv("NATS_URL", ""),
		RateRPS:         getEnvFloat("TG_RATE_RPS", 2.0),
		RateBurst:       getEnvInt("TG_RATE_BURST", 1),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
	}

	return cfg, nil
}

// Validate checks that required credentials are present.
// The returned error names the first missing environment variable so the
// operator knows exactly what to set.
func (c *Config) Validate() error {
	if c.TGApiID == 0 {
		return fmt.Errorf("missing required environment variable TG_API_ID")
	}
	if c.TGApiHash == "" {
		return fmt.Errorf("missing required environment variable TG_API_HASH")
	}
	if c.TGSessionStr == "" {
		return fmt.Errorf("missing required environment variable TG_SESSION_STRING")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
