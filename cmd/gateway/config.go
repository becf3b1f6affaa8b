package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"dvorak/internal/common/cache"
	"dvorak/pkg/utils/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8000"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxHeaderBytes  = 1 << 20

	defaultRedisURL      = "redis://localhost:6379/0"
	defaultAllowOrigin   = "http://localhost:3000"
	defaultProblemsDir   = "problems"
	defaultResultTTL     = 600 * time.Second
	defaultResultCache   = 4096
	defaultSubmitWindow  = time.Minute
	defaultSubmitPerIP   = 30
	defaultCodeSizeLimit = 64 * 1024
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	IdleTimeout    time.Duration `yaml:"idleTimeout"`
	MaxHeaderBytes int           `yaml:"maxHeaderBytes"`
}

// JudgeConfig holds catalog and queue settings.
type JudgeConfig struct {
	ProblemsDir     string        `yaml:"problemsDir"`
	Languages       []string      `yaml:"languages"`
	QueueKey        string        `yaml:"queueKey"`
	MaxQueueDepth   int64         `yaml:"maxQueueDepth"`
	MaxCodeBytes    int           `yaml:"maxCodeBytes"`
	ResultTTL       time.Duration `yaml:"resultTTL"`
	ResultCacheSize int           `yaml:"resultCacheSize"`
}

// RateLimitConfig holds the submit rate limit.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	SubmitIPMax int           `yaml:"submitIPMax"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	Enabled          *bool         `yaml:"enabled"`
	AllowedOrigins   []string      `yaml:"allowedOrigins"`
	AllowedMethods   []string      `yaml:"allowedMethods"`
	AllowedHeaders   []string      `yaml:"allowedHeaders"`
	ExposedHeaders   []string      `yaml:"exposedHeaders"`
	AllowCredentials *bool         `yaml:"allowCredentials"`
	MaxAge           time.Duration `yaml:"maxAge"`
}

// AppConfig holds the gateway configuration.
type AppConfig struct {
	Server ServerConfig      `yaml:"server"`
	Logger logger.Config     `yaml:"logger"`
	Redis  cache.RedisConfig `yaml:"redis"`
	Judge  JudgeConfig       `yaml:"judge"`
	Rate   RateLimitConfig   `yaml:"rateLimit"`
	CORS   CORSConfig        `yaml:"cors"`
}

// loadAppConfig reads an optional yaml file, then .env files, then REDIS_URL,
// ALLOW_ORIGIN and PROBLEMS_DIR from the environment.
func loadAppConfig(path string, envFiles ...string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file failed: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file failed: %w", err)
			}
		}
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("load env file %s failed: %w", file, err)
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("ALLOW_ORIGIN"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("PROBLEMS_DIR"); v != "" {
		cfg.Judge.ProblemsDir = v
	}

	applyDefaults(&cfg)
	if cfg.Rate.SubmitIPMax < 0 {
		return nil, fmt.Errorf("rateLimit.submitIPMax must not be negative")
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = defaultMaxHeaderBytes
	}

	if cfg.Redis.URL == "" && cfg.Redis.Addr == "" {
		cfg.Redis.URL = defaultRedisURL
	}
	cfg.Redis.ApplyDefaults()

	if cfg.Judge.ProblemsDir == "" {
		cfg.Judge.ProblemsDir = defaultProblemsDir
	}
	if len(cfg.Judge.Languages) == 0 {
		cfg.Judge.Languages = []string{"python", "cpp"}
	}
	if cfg.Judge.MaxCodeBytes == 0 {
		cfg.Judge.MaxCodeBytes = defaultCodeSizeLimit
	}
	if cfg.Judge.ResultTTL == 0 {
		cfg.Judge.ResultTTL = defaultResultTTL
	}
	if cfg.Judge.ResultCacheSize == 0 {
		cfg.Judge.ResultCacheSize = defaultResultCache
	}

	if cfg.Rate.Window == 0 {
		cfg.Rate.Window = defaultSubmitWindow
	}
	if cfg.Rate.SubmitIPMax == 0 {
		cfg.Rate.SubmitIPMax = defaultSubmitPerIP
	}

	if cfg.CORS.Enabled == nil {
		enabled := true
		cfg.CORS.Enabled = &enabled
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{defaultAllowOrigin}
	}
	if cfg.CORS.AllowCredentials == nil {
		allow := true
		cfg.CORS.AllowCredentials = &allow
	}
	if len(cfg.CORS.ExposedHeaders) == 0 {
		cfg.CORS.ExposedHeaders = []string{"X-Trace-Id", "X-Request-Id"}
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
