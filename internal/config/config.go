package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"pitchside/internal/econ"
	"pitchside/internal/game"
	"pitchside/internal/sim"
)

type APIConfig struct {
	Addr        string `env:"PITCHSIDE_API_ADDR" envDefault:":8080"`
	Port        string `env:"PORT"`
	DatabaseURL string `env:"DATABASE_URL"`
	// GMTokenHash is the bcrypt hash of the game master's bearer token.
	GMTokenHash string   `env:"PITCHSIDE_GM_TOKEN_HASH"`
	TuningFile  string   `env:"PITCHSIDE_TUNING_FILE"`
	CORSOrigins []string `env:"PITCHSIDE_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

type WorkerConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	TuningFile  string `env:"PITCHSIDE_TUNING_FILE"`
	Schedule    string `env:"PITCHSIDE_WORKER_SCHEDULE" envDefault:"0 */1 * * * *"`
	RunOnce     bool   `env:"PITCHSIDE_WORKER_RUN_ONCE"`
	Concurrency int    `env:"PITCHSIDE_WORKER_CONCURRENCY" envDefault:"4"`
}

type CLIConfig struct {
	APIBaseURL string `env:"PITCH_API_BASE_URL" envDefault:"http://localhost:8080"`
}

func LoadAPIFromEnv() (APIConfig, error) {
	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if p := strings.TrimSpace(cfg.Port); p != "" {
		if !strings.HasPrefix(p, ":") {
			p = ":" + p
		}
		cfg.Addr = p
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.GMTokenHash = strings.TrimSpace(cfg.GMTokenHash)
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if _, _, err := ParseDatabaseURL(cfg.DatabaseURL); err != nil {
		return cfg, err
	}
	if cfg.GMTokenHash == "" {
		return cfg, fmt.Errorf("PITCHSIDE_GM_TOKEN_HASH is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	var cfg WorkerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if _, _, err := ParseDatabaseURL(cfg.DatabaseURL); err != nil {
		return cfg, err
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return cfg, nil
}

func LoadCLIFromEnv() (CLIConfig, error) {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:8080"
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return cfg, fmt.Errorf("PITCH_API_BASE_URL must be an http(s) URL, got %q", cfg.APIBaseURL)
	}
	return cfg, nil
}

// Store backends selectable through DATABASE_URL.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// ParseDatabaseURL splits a DATABASE_URL into the store backend and the
// target handed to it: the full URL for postgres, a file path for sqlite.
func ParseDatabaseURL(raw string) (kind, target string, err error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return StorePostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return "", "", errors.New("sqlite DATABASE_URL needs a file path")
		}
		return StoreSQLite, path, nil
	case raw == "memory://" || raw == "memory":
		return StoreMemory, "", nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL %q", raw)
	}
}

// Tuning is the YAML shape of the model coefficients. Keys left out of the
// file keep their defaults.
type Tuning struct {
	Sim  sim.Params  `yaml:"sim"`
	Econ econ.Params `yaml:"econ"`
}

func DefaultTuning() Tuning {
	p := game.DefaultParams()
	return Tuning{Sim: p.Sim, Econ: p.Econ}
}

func (t Tuning) Validate() error {
	var errs []error
	if err := t.Sim.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sim: %w", err))
	}
	if err := t.Econ.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("econ: %w", err))
	}
	return errors.Join(errs...)
}

func (t Tuning) Params() game.Params {
	return game.Params{Sim: t.Sim, Econ: t.Econ}
}

// LoadTuning reads a tuning file over the defaults. An empty path returns the
// defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	path = strings.TrimSpace(path)
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("invalid tuning: %w", err)
	}
	return t, nil
}
