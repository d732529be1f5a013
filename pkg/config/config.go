package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for boggart.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables override YAML values. Secrets (API
// keys) must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	LLM    LLMConfig    `yaml:"llm"`
	Google GoogleConfig `yaml:"google"`
	Media  MediaConfig  `yaml:"media"`
}

// LLMConfig selects and configures the text-generation backend.
type LLMConfig struct {
	// Provider is "anthropic" or "openai" (any OpenAI-compatible endpoint).
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"anthropic"`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:"claude-sonnet-4-5-20250929"`
	Endpoint    string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"4096"`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"1.0"`
}

// GoogleConfig holds settings for the Google data-source workers.
type GoogleConfig struct {
	// RequestTimeout bounds each data-source API call.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"GOOGLE_REQUEST_TIMEOUT" env-default:"30s"`
	// MaxResults caps list calls per source.
	MaxResults int `yaml:"max_results" env:"GOOGLE_MAX_RESULTS" env-default:"200"`
}

// MediaConfig configures image and video generation.
type MediaConfig struct {
	// APIKey enables the Gemini image/video services when set.
	APIKey string `yaml:"-" env:"GOOGLE_AI_API_KEY"` // Secret - not in YAML
	// VideoDir is where downloaded videos are materialized. Defaults to
	// a boggart-videos directory under the OS temp dir.
	VideoDir string `yaml:"video_dir" env:"VIDEO_DIR" env-default:""`
	// PollInterval is the wait between video operation polls.
	PollInterval time.Duration `yaml:"poll_interval" env:"VIDEO_POLL_INTERVAL" env-default:"10s"`
	// MaxPollAttempts caps polling; with the default interval this is a
	// five minute ceiling.
	MaxPollAttempts int `yaml:"max_poll_attempts" env:"VIDEO_MAX_POLL_ATTEMPTS" env-default:"30"`
}

// Configured reports whether the media services are enabled.
func (m *MediaConfig) Configured() bool {
	return m.APIKey != ""
}

// Load reads configuration from config.yaml (if present) and the
// environment.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if cfg.Media.VideoDir == "" {
		cfg.Media.VideoDir = filepath.Join(os.TempDir(), "boggart-videos")
	}

	return cfg, nil
}
