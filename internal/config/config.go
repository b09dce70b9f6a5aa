// Package config handles configuration loading for ResearchIQ.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	AI       AIConfig       `mapstructure:"ai"       yaml:"ai"`
	Sources  SourcesConfig  `mapstructure:"sources"  yaml:"sources"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// LLMConfig holds text-generation provider configuration.
type LLMConfig struct {
	GeminiKey   string  `mapstructure:"gemini_key"  yaml:"gemini_key"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
	TimeoutSec  int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// AnalysisConfig holds indicator-engine constants.
type AnalysisConfig struct {
	RSIPeriod      int   `mapstructure:"rsi_period"      yaml:"rsi_period"`
	MAPeriods      []int `mapstructure:"ma_periods"      yaml:"ma_periods"`
	VolumeLookback int   `mapstructure:"volume_lookback" yaml:"volume_lookback"`
	HistoryDays    int   `mapstructure:"history_days"    yaml:"history_days"`
}

// AIConfig holds insight-generation policy settings.
type AIConfig struct {
	MaxRetries      int `mapstructure:"max_retries"        yaml:"max_retries"`
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes"  yaml:"cache_ttl_minutes"`
}

// SourcesConfig holds per-provider settings for the optional data sources.
type SourcesConfig struct {
	NewsLimit    int    `mapstructure:"news_limit"     yaml:"news_limit"`
	SECUserAgent string `mapstructure:"sec_user_agent" yaml:"sec_user_agent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.researchiq/config.yaml (home directory)
//  3. /etc/researchiq/config.yaml (system)
//
// Environment variables override config file values.
// Format: RESEARCHIQ_<SECTION>_<KEY>, e.g., RESEARCHIQ_LLM_GEMINI_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".researchiq"))
	v.AddConfigPath("/etc/researchiq")

	v.SetEnvPrefix("RESEARCHIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("RESEARCHIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// Default returns a configuration populated with defaults only, without
// touching the filesystem. Used by tests and as a library fallback.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	// LLM
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.timeout_sec", 10)

	// API
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Analysis
	v.SetDefault("analysis.rsi_period", 14)
	v.SetDefault("analysis.ma_periods", []int{20, 50, 200})
	v.SetDefault("analysis.volume_lookback", 30)
	v.SetDefault("analysis.history_days", 90)

	// AI insight policy
	v.SetDefault("ai.max_retries", 2)
	v.SetDefault("ai.cache_ttl_minutes", 60)

	// Sources
	v.SetDefault("sources.news_limit", 10)
	v.SetDefault("sources.sec_user_agent", "ResearchIQ/1.0 research@example.com")

	// Logging
	v.SetDefault("logging.level", "info")
}

// overrideFromEnv applies sensitive values from well-known environment
// variables even when viper's automatic binding misses them.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.LLM.GeminiKey == "" {
		cfg.LLM.GeminiKey = key
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
