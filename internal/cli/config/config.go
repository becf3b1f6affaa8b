package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"dvorak/pkg/utils/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// BaseURLEnv names the environment variable holding the gateway base URL.
	BaseURLEnv = "DVORAK_API_BASE"

	DefaultBaseURL       = "http://localhost:8000"
	DefaultTimeout       = 10 * time.Second
	DefaultStatePath     = ".dvorak/state.json"
	DefaultPollInterval  = 800 * time.Millisecond
	DefaultPollBackoff   = 5 * time.Second
	DefaultWatchInterval = 100 * time.Millisecond
	DefaultLogPath       = ".dvorak/cli.log"
)

// Config holds CLI configuration.
type Config struct {
	BaseURL         string        `yaml:"baseURL"`
	Timeout         time.Duration `yaml:"timeout"`
	StatePath       string        `yaml:"statePath"`
	PollInterval    time.Duration `yaml:"pollInterval"`
	MaxPollBackoff  time.Duration `yaml:"maxPollBackoff"`
	MaxPollFailures int           `yaml:"maxPollFailures"`
	MaxPollDuration time.Duration `yaml:"maxPollDuration"`
	WatchInterval   time.Duration `yaml:"watchInterval"`
	Logger          logger.Config `yaml:"logger"`
}

// Load reads the yaml file at path, then applies .env files and the process
// environment on top of it. A missing config or .env file is not an error.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config file failed: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file failed: %w", err)
			}
		}
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return cfg, err
	}
	if base := os.Getenv(BaseURLEnv); base != "" {
		cfg.BaseURL = base
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// loadEnvFiles never overrides variables already present in the environment.
func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file failed: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxPollBackoff <= 0 {
		cfg.MaxPollBackoff = DefaultPollBackoff
	}
	if cfg.MaxPollFailures < 0 {
		cfg.MaxPollFailures = 0
	}
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = DefaultWatchInterval
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
	// stdout belongs to the REPL
	if cfg.Logger.OutputPath == "" || cfg.Logger.OutputPath == "stdout" {
		cfg.Logger.OutputPath = DefaultLogPath
	}
}
