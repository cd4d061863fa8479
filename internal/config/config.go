package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	AI        AIConfig        `json:"ai"`
	Analytics AnalyticsConfig `json:"analytics"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type AuthConfig struct {
	JWTSecret   string `json:"jwt_secret"`
	ExpiryHours int    `json:"expiry_hours"`
}

type RateLimitConfig struct {
	// Store selects the counter backend: "redis" (default) or "postgres".
	Store string `json:"store"`

	// Tiers maps tier name -> period -> quota; -1 means unlimited.
	// Empty means the built-in defaults (free 10/day, starter 100/day,
	// pro and business unlimited).
	Tiers map[string]map[string]int `json:"tiers"`

	// CleanupIntervalMinutes controls the expired-counter sweep.
	CleanupIntervalMinutes int `json:"cleanup_interval_minutes"`
}

type AIConfig struct {
	// Provider is "gemini", "openai" or "anthropic".
	Provider string `json:"provider"`

	GeminiAPIKey    string `json:"gemini_api_key"`
	OpenAIAPIKey    string `json:"openai_api_key"`
	AnthropicAPIKey string `json:"anthropic_api_key"`

	GeminiModel    string `json:"gemini_model"`
	OpenAIModel    string `json:"openai_model"`
	AnthropicModel string `json:"anthropic_model"`

	MaxTokens int `json:"max_tokens"`

	// Temperature is a pointer so an explicit 0 in the file survives
	// defaulting; nil means "not set" and falls back to 0.7.
	Temperature *float64 `json:"temperature"`

	TimeoutSeconds int `json:"timeout_seconds"`
}

type AnalyticsConfig struct {
	// RetentionDays bounds how long raw usage logs are kept before the
	// background sweep deletes them. 0 means the default of 90 days.
	RetentionDays int `json:"retention_days"`
}

func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Auth.ExpiryHours == 0 {
		c.Auth.ExpiryHours = 24
	}
	if c.RateLimit.Store == "" {
		c.RateLimit.Store = "redis"
	}
	if c.RateLimit.CleanupIntervalMinutes == 0 {
		c.RateLimit.CleanupIntervalMinutes = 60
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.GeminiModel == "" {
		c.AI.GeminiModel = "gemini-pro"
	}
	if c.AI.OpenAIModel == "" {
		c.AI.OpenAIModel = "gpt-4"
	}
	if c.AI.AnthropicModel == "" {
		c.AI.AnthropicModel = "claude-3-sonnet-20240229"
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 1500
	}
	if c.AI.Temperature == nil {
		t := 0.7
		c.AI.Temperature = &t
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.Analytics.RetentionDays == 0 {
		c.Analytics.RetentionDays = 90
	}
}

// Secrets come from the environment, never from the checked-in config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.GeminiAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.OpenAIAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AI.AnthropicAPIKey = v
	}
}
