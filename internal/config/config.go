// Package config reads the runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/sandeepkv93/taskboard/internal/model"
)

const (
	// AppName is the state directory name.
	AppName = "taskboard"

	stateFile = "state.db"
	logFile   = "taskboard.log"
)

type RuntimeConfig struct {
	APIBaseURL        string        `env:"TASKBOARD_API_URL" env-default:"http://localhost:5000/api"`
	PageSize          int           `env:"TASKBOARD_PAGE_SIZE" env-default:"5"`
	DefaultSort       string        `env:"TASKBOARD_DEFAULT_SORT" env-default:"createdAt:desc"`
	RequestTimeout    time.Duration `env:"TASKBOARD_REQUEST_TIMEOUT" env-default:"10s"`
	RequestsPerSecond float64       `env:"TASKBOARD_RATE_LIMIT" env-default:"20"`
	BulkConcurrency   int           `env:"TASKBOARD_BULK_CONCURRENCY" env-default:"4"`
	StateDir          string        `env:"TASKBOARD_STATE_DIR"`
	LogLevel          string        `env:"TASKBOARD_LOG_LEVEL" env-default:"info"`
	ToastDuration     time.Duration `env:"TASKBOARD_TOAST_DURATION" env-default:"3s"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		APIBaseURL:        "http://localhost:5000/api",
		PageSize:          5,
		DefaultSort:       string(model.DefaultSortKey),
		RequestTimeout:    10 * time.Second,
		RequestsPerSecond: 20,
		BulkConcurrency:   4,
		StateDir:          DefaultStateDir(),
		LogLevel:          "info",
		ToastDuration:     3 * time.Second,
	}
}

// Load reads the environment on top of the defaults and validates the result.
func Load() (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("read env: %w", err)
	}
	if strings.TrimSpace(cfg.StateDir) == "" {
		cfg.StateDir = DefaultStateDir()
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func (c RuntimeConfig) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("config: TASKBOARD_API_URL is required"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("config: page size must be positive, got %d", c.PageSize))
	}
	if !model.SortKey(c.DefaultSort).IsValid() {
		errs = append(errs, fmt.Errorf("config: unknown default sort %q", c.DefaultSort))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("config: request timeout must be positive"))
	}
	if c.BulkConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("config: bulk concurrency must be positive, got %d", c.BulkConcurrency))
	}
	return errors.Join(errs...)
}

// DefaultStateDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultStateDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c RuntimeConfig) StatePath() string {
	return filepath.Join(c.StateDir, stateFile)
}

func (c RuntimeConfig) LogPath() string {
	return filepath.Join(c.StateDir, logFile)
}

func (c RuntimeConfig) EnsureStateDir() error {
	return os.MkdirAll(c.StateDir, 0o700)
}
