package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIBaseURL = "http://localhost:8093/api/v0"

type Config struct {
	Env      string
	API      APIConfig
	Storage  StorageConfig
	Paging   PagingConfig
	Log      LogConfig
	StateDir string
	// RateLimitCooldown applies when a 429 carries no Retry-After.
	RateLimitCooldown time.Duration
}

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type StorageConfig struct {
	DBPath string
}

type PagingConfig struct {
	ConversationLimit int
	MessageLimit      int
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads configuration from the environment. In development a .env file
// in the working directory is loaded first, if present.
func Load() (Config, error) {
	if getEnv("ASTROGUIDE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	stateDir := getEnv("ASTROGUIDE_STATE_DIR", "")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".astroguide")
	}

	cfg := Config{
		Env:      getEnv("ASTROGUIDE_ENV", "development"),
		StateDir: stateDir,
		API: APIConfig{
			BaseURL:        getEnv("ASTROGUIDE_API_BASE_URL", DefaultAPIBaseURL),
			RequestTimeout: getEnvDuration("ASTROGUIDE_REQUEST_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			DBPath: getEnv("ASTROGUIDE_DB", filepath.Join(stateDir, "client.db")),
		},
		Paging: PagingConfig{
			ConversationLimit: getEnvInt("ASTROGUIDE_CONVERSATION_PAGE_SIZE", 20),
			MessageLimit:      getEnvInt("ASTROGUIDE_MESSAGE_PAGE_SIZE", 50),
		},
		Log: LogConfig{
			Level: getEnv("ASTROGUIDE_LOG_LEVEL", ""),
			File:  getEnv("ASTROGUIDE_LOG_FILE", filepath.Join(stateDir, "astroguide.log")),
		},
		RateLimitCooldown: getEnvDuration("ASTROGUIDE_RATE_LIMIT_COOLDOWN", 30*time.Second),
	}

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("ASTROGUIDE_API_BASE_URL must not be empty")
	}
	if cfg.Paging.ConversationLimit <= 0 || cfg.Paging.MessageLimit <= 0 {
		return Config{}, fmt.Errorf("page sizes must be positive")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
