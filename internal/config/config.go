// Package config loads the CLI configuration and API credentials.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults mirror the stock configuration shipped with the tool. Every
// value can be overridden via config.json in the config directory.
const (
	DefaultModel       = "moonshotai/kimi-k2.5"
	DefaultFreeModel   = "nvidia/nemotron-3-nano-30b-a3b:free"
	defaultMaxContext  = 200000
	defaultMaxOutput   = 32768
	defaultTimeout     = 180 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
)

// Default council model per member slot. The plan council reuses the same
// three slots under its own role names.
var defaultCouncilModels = map[string]string{
	"correctness": "openai/gpt-5.2",
	"performance": "google/gemini-3-pro-preview",
	"security":    "x-ai/grok-4",
}

// Config holds all resolved settings. It is constructed once at startup
// and passed explicitly; nothing reads it through package-level state.
type Config struct {
	Model           string
	FreeModel       string
	CouncilModels   map[string]string
	Reasoning       string
	MaxContextChars int
	MaxOutputTokens int
	EnableWebSearch bool
	RequestTimeout  time.Duration
	MaxAttempts     int
	InitialBackoff  time.Duration
	LogLevel        slog.Level
}

// Dir returns the configuration directory, honoring COUNCIL_CONFIG_DIR
// for tests and non-standard setups.
func Dir() string {
	if dir := os.Getenv("COUNCIL_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "code-council")
}

// Load reads config.json from the config directory (if present), applies
// defaults, and validates the result. A missing config file is not an
// error; an unreadable or invalid one is.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(Dir())

	v.SetDefault("model", DefaultModel)
	v.SetDefault("free_model", DefaultFreeModel)
	v.SetDefault("reasoning", "high")
	v.SetDefault("max_context", defaultMaxContext)
	v.SetDefault("max_output_tokens", defaultMaxOutput)
	v.SetDefault("enable_web_search", true)
	v.SetDefault("request_timeout_seconds", int(defaultTimeout.Seconds()))
	v.SetDefault("max_retries", defaultMaxAttempts)
	v.SetDefault("initial_backoff_seconds", int(defaultBackoff.Seconds()))
	v.SetDefault("log_level", "warn")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	councilModels := make(map[string]string, len(defaultCouncilModels))
	for slot, model := range defaultCouncilModels {
		councilModels[slot] = model
	}
	for slot, model := range v.GetStringMapString("council_models") {
		if model != "" {
			councilModels[strings.ToLower(slot)] = model
		}
	}

	cfg := &Config{
		Model:           v.GetString("model"),
		FreeModel:       v.GetString("free_model"),
		CouncilModels:   councilModels,
		Reasoning:       strings.ToLower(v.GetString("reasoning")),
		MaxContextChars: v.GetInt("max_context"),
		MaxOutputTokens: v.GetInt("max_output_tokens"),
		EnableWebSearch: v.GetBool("enable_web_search"),
		RequestTimeout:  time.Duration(v.GetInt("request_timeout_seconds")) * time.Second,
		MaxAttempts:     v.GetInt("max_retries"),
		InitialBackoff:  time.Duration(v.GetInt("initial_backoff_seconds")) * time.Second,
		LogLevel:        parseLogLevel(v.GetString("log_level")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Reasoning {
	case "none", "low", "medium", "high":
	default:
		return fmt.Errorf("invalid reasoning effort %q (want none, low, medium, or high)", c.Reasoning)
	}
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("max_context must be positive, got %d", c.MaxContextChars)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive, got %d", c.MaxOutputTokens)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_retries must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Model shortcuts accepted by the --model flag.
var modelShortcuts = map[string]string{
	"gpt":      "openai/gpt-5.2",
	"premium":  "openai/gpt-5.2",
	"kimi":     "moonshotai/kimi-k2.5",
	"standard": "moonshotai/kimi-k2.5",
	"std":      "moonshotai/kimi-k2.5",
	"deepseek": "deepseek/deepseek-v3.2",
}

// ResolveModel expands a shortcut to a full model ID. "free" resolves to
// the configured free-tier model; unknown values pass through untouched so
// any model ID can be given directly.
func (c *Config) ResolveModel(arg string) string {
	if arg == "" {
		return c.Model
	}
	lower := strings.ToLower(arg)
	if lower == "free" {
		return c.FreeModel
	}
	if full, ok := modelShortcuts[lower]; ok {
		return full
	}
	return arg
}
