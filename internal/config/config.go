package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Backtest   BacktestConfig             `mapstructure:"backtest"`
	Strategies map[string]StrategyConfig  `mapstructure:"strategies"`
	Collectors map[string]CollectorConfig `mapstructure:"collectors"`
	LLM        LLMConfig                  `mapstructure:"llm"`
	Storage    StorageConfig              `mapstructure:"storage"`
	Metrics    MetricsConfig              `mapstructure:"metrics"`
	Batch      BatchConfig                `mapstructure:"batch"`
	Notifiers  map[string]NotifierConfig  `mapstructure:"notifiers"`
	Log        LogConfig                  `mapstructure:"log"`
}

// LogConfig holds logger settings; --debug overrides both
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BacktestConfig struct {
	InitialCash float64 `mapstructure:"initial_cash"`
	Interval    string  `mapstructure:"interval"`
	HistoryDays int     `mapstructure:"history_days"`
}

type StrategyConfig struct {
	Params map[string]any `mapstructure:"params"`
}

type CollectorConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	BaseURL      string   `mapstructure:"base_url"`
	DefaultQuote string   `mapstructure:"default_quote"`
	Providers    []string `mapstructure:"providers"`
}

type LLMConfig struct {
	Provider  string        `mapstructure:"provider"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Claude    ClaudeConfig  `mapstructure:"claude"`
	OpenAI    OpenAIConfig  `mapstructure:"openai"`
	Ollama    OllamaConfig  `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type StorageConfig struct {
	Archive ArchiveConfig `mapstructure:"archive"`
	Journal JournalConfig `mapstructure:"journal"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// NotifierConfig enables a summary channel such as telegram or webhook
type NotifierConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Params  map[string]any `mapstructure:"params"`
}

// MetricsConfig holds metrics export settings
type MetricsConfig struct {
	// Textfile is a node-exporter textfile path; empty disables export
	Textfile string `mapstructure:"textfile"`
}

// BatchConfig holds multi-run settings
type BatchConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from file on top of Defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand ${VAR} string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefaults loads path, or returns Defaults when path is empty
func LoadOrDefaults(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	return Load(path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCash: 10000,
			Interval:    "1d",
			HistoryDays: 365,
		},
		Strategies: map[string]StrategyConfig{},
		Collectors: map[string]CollectorConfig{
			"yahoo":     {Enabled: true},
			"eastmoney": {Enabled: true},
			"crypto":    {Enabled: true, DefaultQuote: "USDT", Providers: []string{"binance", "okx"}},
		},
		LLM: LLMConfig{
			Timeout:   20 * time.Second,
			MaxTokens: 256,
			Claude:    ClaudeConfig{MaxRetries: 2},
		},
		Storage: StorageConfig{
			Archive: ArchiveConfig{
				Type: "localfs",
			},
		},
		Batch: BatchConfig{
			Concurrency: 4,
			Timeout:     5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// StrategyParams returns the configured params for name, or nil
func (c *Config) StrategyParams(name string) map[string]any {
	if sc, ok := c.Strategies[name]; ok {
		return sc.Params
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backtest.InitialCash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_cash must be positive, got %v", c.Backtest.InitialCash))
	}
	if c.Backtest.Interval == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("backtest interval required"))
	}
	if c.Backtest.HistoryDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("history_days must be positive, got %d", c.Backtest.HistoryDays))
	}

	if c.Batch.Concurrency < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch concurrency must be at least 1, got %d", c.Batch.Concurrency))
	}
	if c.Batch.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch timeout cannot be negative, got %s", c.Batch.Timeout))
	}

	switch c.Storage.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Storage.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type: %s", c.Storage.Archive.Type))
	}

	for name, nc := range c.Notifiers {
		if !nc.Enabled {
			continue
		}
		switch name {
		case "telegram", "webhook":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown notifier: %s", name))
		}
	}

	if c.LLM.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("llm timeout cannot be negative, got %s", c.LLM.Timeout))
	}

	// LLM validation - if provider set, check config exists
	switch c.LLM.Provider {
	case "":
	case "claude":
		if c.LLM.Claude.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("claude api_key required when provider is claude"))
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("openai api_key required when provider is openai"))
		}
	case "ollama":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown llm provider: %s", c.LLM.Provider))
	}

	return nil
}
