package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	OpenAI   OpenAIConfig
	Agent    AgentConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	StaticDir      string
	AllowedOrigins []string
	// MaxBodyBytes bounds a chat request, dataset included.
	MaxBodyBytes   int64
}

type OpenAIConfig struct {
	Provider    string
	APIKey      string
	APIEndpoint string
	Model       string
	APIVersion  string
	MaxTokens   int64
	Temperature float64
}

type AgentConfig struct {
	// MaxSteps caps the number of model round trips per request.
	MaxSteps   int
	LLMTimeout time.Duration
	MaxRetries int
}

var defaults = map[string]any{
	"server_port":           "5000",
	"server_host":           "0.0.0.0",
	"server_read_timeout":   "30s",
	"server_write_timeout":  "5m",
	"static_dir":            "frontend/build",
	"cors_allowed_origins":  "*",
	"server_max_body_bytes": 32 << 20,
	"openai_provider":       "openai",
	"openai_endpoint":       "https://api.openai.com/v1",
	"openai_model":          "gpt-3.5-turbo",
	"openai_api_version":    "2024-06-01",
	"openai_max_tokens":     1000,
	"openai_temperature":    0.0,
	"agent_max_steps":       10,
	"llm_timeout":           "60s",
	"llm_max_retries":       2,
	"log_level":             "info",
}

// LoadConfig reads configuration from the environment, loading a .env file
// from the working directory first when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return Load(viper.New())
}

// Load builds a Config from v. Environment variables are bound automatically.
func Load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// openai_api_key has no default, so it needs an explicit binding
	if err := v.BindEnv("openai_api_key", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server_port"),
			Host:           v.GetString("server_host"),
			ReadTimeout:    v.GetDuration("server_read_timeout"),
			WriteTimeout:   v.GetDuration("server_write_timeout"),
			StaticDir:      v.GetString("static_dir"),
			AllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
			MaxBodyBytes:   v.GetInt64("server_max_body_bytes"),
		},
		OpenAI: OpenAIConfig{
			Provider:    v.GetString("openai_provider"),
			APIKey:      v.GetString("openai_api_key"),
			APIEndpoint: v.GetString("openai_endpoint"),
			Model:       v.GetString("openai_model"),
			APIVersion:  v.GetString("openai_api_version"),
			MaxTokens:   v.GetInt64("openai_max_tokens"),
			Temperature: v.GetFloat64("openai_temperature"),
		},
		Agent: AgentConfig{
			MaxSteps:   v.GetInt("agent_max_steps"),
			LLMTimeout: v.GetDuration("llm_timeout"),
			MaxRetries: v.GetInt("llm_max_retries"),
		},
		LogLevel: v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully")
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	switch c.OpenAI.Provider {
	case "openai", "azure":
	default:
		return fmt.Errorf("unsupported OPENAI_PROVIDER %q", c.OpenAI.Provider)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("SERVER_MAX_BODY_BYTES must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("AGENT_MAX_STEPS must be positive, got %d", c.Agent.MaxSteps)
	}
	if c.Agent.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative, got %d", c.Agent.MaxRetries)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
