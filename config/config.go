// Package config holds all environment backed configuration for the
// ToolBridge server. A .env file in the working directory is honored when
// present.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Model provider selection is by name;
// "mock" needs no credentials and is the fallback for local experimentation.
type Config struct {
	// HTTP server
	Host string `env:"BACKEND_HOST" envDefault:"localhost"`
	Port int    `env:"BACKEND_PORT" envDefault:"8000"`

	// Model provider
	ModelProvider   string        `env:"MODEL_PROVIDER" envDefault:"openai"` // openai | anthropic | mock
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	ModelName       string        `env:"MODEL_NAME" envDefault:"gpt-4o-mini"`
	MaxTokens       int64         `env:"MAX_TOKENS" envDefault:"1000"`
	Temperature     float64       `env:"TEMPERATURE" envDefault:"0.7"`
	ModelTimeout    time.Duration `env:"MODEL_TIMEOUT" envDefault:"30s"`

	// Observability / logging
	ServiceName string `env:"SERVICE_NAME" envDefault:"toolbridge"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment (plus an optional .env file) into Config and
// performs minimal validation.
func Load() (*Config, error) {
	_ = godotenv.Load() // absent .env is fine

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges mirrored from the model providers' limits.
func (c *Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be at least 1, got %d", c.MaxTokens)
	}
	switch c.ModelProvider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown model provider %q", c.ModelProvider)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
