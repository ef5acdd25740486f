// Package config loads service settings: defaults, then an optional JSON
// file, then environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Strategies map to a default aggressiveness.
const (
	StrategyBalanced     = "balanced"
	StrategyAggressive   = "aggressive"
	StrategyConservative = "conservative"
)

var strategyAggressiveness = map[string]float64{
	StrategyAggressive:   0.8,
	StrategyBalanced:     0.5,
	StrategyConservative: 0.2,
}

type Server struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type AI struct {
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	APIKey           string  `json:"apiKey"`
	BaseURL          string  `json:"baseUrl"`
	MaxTokens        int     `json:"maxTokens"`
	Temperature      float64 `json:"temperature"`
	TimeoutSeconds   int     `json:"timeoutSeconds"`
	MaxAttempts      int     `json:"maxAttempts"`
	DailyBudgetUSD   float64 `json:"dailyBudgetUsd"`
	MonthlyBudgetUSD float64 `json:"monthlyBudgetUsd"`
}

type Agent struct {
	Personality    string  `json:"personality"`
	Strategy       string  `json:"strategy"`
	Aggressiveness float64 `json:"aggressiveness"` // negative: derive from Strategy
	MaxSpeechRunes int     `json:"maxSpeechRunes"`
	Seed           int64   `json:"seed"` // 0: seeded from the clock
}

type Storage struct {
	Driver string `json:"driver"` // none, sqlite, postgres
	DSN    string `json:"dsn"`
}

// Config is the full service configuration.
type Config struct {
	Server          Server  `json:"server"`
	AI              AI      `json:"ai"`
	Agent           Agent   `json:"agent"`
	Storage         Storage `json:"storage"`
	LogLevel        string  `json:"logLevel"`
	RegimeCacheSize int     `json:"regimeCacheSize"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: Server{Host: "0.0.0.0", Port: 3001},
		AI: AI{
			Provider:         "none",
			MaxTokens:        512,
			Temperature:      0.7,
			TimeoutSeconds:   30,
			MaxAttempts:      2,
			DailyBudgetUSD:   1,
			MonthlyBudgetUSD: 20,
		},
		Agent: Agent{
			Strategy:       StrategyBalanced,
			Aggressiveness: -1,
			MaxSpeechRunes: 80,
		},
		Storage:         Storage{Driver: "none"},
		LogLevel:        "info",
		RegimeCacheSize: 256,
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Agent.Aggressiveness < 0 {
		cfg.Agent.Aggressiveness = strategyAggressiveness[strings.ToLower(cfg.Agent.Strategy)]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file without overriding variables already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: Port must be in 1..65535, got %d", c.Server.Port)
	}
	switch strings.ToLower(c.AI.Provider) {
	case "", "none":
	case "openai", "openrouter", "anthropic":
		if c.AI.APIKey == "" {
			return fmt.Errorf("config: AI_API_KEY is required for provider %q", c.AI.Provider)
		}
	default:
		return fmt.Errorf("config: unknown AI provider %q", c.AI.Provider)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("config: Temperature must be in [0, 2], got %v", c.AI.Temperature)
	}
	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("config: MaxAttempts must be >= 1, got %d", c.AI.MaxAttempts)
	}
	if _, ok := strategyAggressiveness[strings.ToLower(c.Agent.Strategy)]; !ok {
		return fmt.Errorf("config: unknown strategy %q", c.Agent.Strategy)
	}
	if c.Agent.Aggressiveness < 0 || c.Agent.Aggressiveness > 1 {
		return fmt.Errorf("config: Aggressiveness must be in [0, 1], got %v", c.Agent.Aggressiveness)
	}
	if c.Agent.MaxSpeechRunes < 30 {
		return fmt.Errorf("config: MaxSpeechRunes must be >= 30, got %d", c.Agent.MaxSpeechRunes)
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "", "none", "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: STORAGE_DSN is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.RegimeCacheSize < 0 {
		return fmt.Errorf("config: RegimeCacheSize must be >= 0, got %d", c.RegimeCacheSize)
	}
	return nil
}

func (c *Config) applyEnv() error {
	envString("HOST", &c.Server.Host)
	envString("AI_PROVIDER", &c.AI.Provider)
	envString("AI_MODEL", &c.AI.Model)
	envString("AI_API_KEY", &c.AI.APIKey)
	envString("AI_BASE_URL", &c.AI.BaseURL)
	envString("AGENT_PERSONALITY", &c.Agent.Personality)
	envString("AGENT_STRATEGY", &c.Agent.Strategy)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("STORAGE_DRIVER", &c.Storage.Driver)
	envString("STORAGE_DSN", &c.Storage.DSN)

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &c.Server.Port},
		{"AI_MAX_TOKENS", &c.AI.MaxTokens},
		{"AGENT_MAX_SPEECH_RUNES", &c.Agent.MaxSpeechRunes},
		{"REGIME_CACHE_SIZE", &c.RegimeCacheSize},
	}
	for _, e := range ints {
		if err := envInt(e.key, e.dst); err != nil {
			return err
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"AI_TEMPERATURE", &c.AI.Temperature},
		{"AI_DAILY_BUDGET_USD", &c.AI.DailyBudgetUSD},
		{"AI_MONTHLY_BUDGET_USD", &c.AI.MonthlyBudgetUSD},
		{"AGENT_AGGRESSIVENESS", &c.Agent.Aggressiveness},
	}
	for _, e := range floats {
		if err := envFloat(e.key, e.dst); err != nil {
			return err
		}
	}

	if s := os.Getenv("AGENT_SEED"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("config: invalid AGENT_SEED value %q: %w", s, err)
		}
		c.Agent.Seed = v
	}
	return nil
}

func envString(key string, dst *string) {
	if s := os.Getenv(key); s != "" {
		*dst = s
	}
}

func envInt(key string, dst *int) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("config: invalid %s value %q: %w", key, s, err)
	}
	*dst = v
	return nil
}

func envFloat(key string, dst *float64) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("config: invalid %s value %q: %w", key, s, err)
	}
	*dst = v
	return nil
}
