// Package config provides configuration for the calling coach.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the calling coach configuration.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Public base URL the voice platform posts webhooks to
	WebhookBaseURL string `yaml:"webhook_base_url"`

	// Auth
	JWTSecret string `yaml:"jwt_secret"`

	// Evaluator
	OpenAIAPIKey   string        `yaml:"openai_api_key"`
	OpenAIBaseURL  string        `yaml:"openai_base_url"`
	ScoringModel   string        `yaml:"scoring_model"`
	ScoringTimeout time.Duration `yaml:"scoring_timeout"`

	// Interval of the background retry of unscored completed sessions; 0 disables it
	ScoringRetryInterval time.Duration `yaml:"scoring_retry_interval"`

	// Call assistant
	AssistantModel string `yaml:"assistant_model"`
	VoiceID        string `yaml:"voice_id"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HTTPPort:             8080,
		DatabaseURL:          "file:calling_coach.db?mode=rwc",
		WebhookBaseURL:       "https://your-server.com",
		JWTSecret:            "change-me",
		ScoringModel:         "gpt-4o",
		ScoringTimeout:       60 * time.Second,
		ScoringRetryInterval: 5 * time.Minute,
		AssistantModel:       "gpt-4o",
		VoiceID:              "burt",
		LogLevel:             "info",
	}
}

// Load loads configuration from a .env file, an optional YAML file named by
// COACH_CONFIG, and environment variables, in increasing precedence.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: failed to load .env: %v", err)
	}

	cfg := Default()
	if path := os.Getenv("COACH_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			log.Printf("WARN: %v", err)
		}
	}
	cfg.applyEnv()
	return cfg
}

// LoadFile overlays the YAML document at path onto cfg.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.WebhookBaseURL = webhookBaseURL(c.WebhookBaseURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.ScoringModel = getEnv("SCORING_MODEL", c.ScoringModel)
	c.ScoringTimeout = time.Duration(getEnvInt("SCORING_TIMEOUT_MS", int(c.ScoringTimeout/time.Millisecond))) * time.Millisecond
	c.ScoringRetryInterval = time.Duration(getEnvInt("SCORING_RETRY_INTERVAL_MS", int(c.ScoringRetryInterval/time.Millisecond))) * time.Millisecond
	c.AssistantModel = getEnv("ASSISTANT_MODEL", c.AssistantModel)
	c.VoiceID = getEnv("VOICE_ID", c.VoiceID)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// webhookBaseURL prefers WEBHOOK_BASE_URL, then the Railway public domain.
func webhookBaseURL(fallback string) string {
	if explicit := os.Getenv("WEBHOOK_BASE_URL"); explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if domain := os.Getenv("RAILWAY_PUBLIC_DOMAIN"); domain != "" {
		return "https://" + domain
	}
	return strings.TrimRight(fallback, "/")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
