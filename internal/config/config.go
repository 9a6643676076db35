package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rhymond/go-money"
	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/montra-dev/montra/internal/storage"
)

// FileName is the config file kept at the root of a data directory.
const FileName = "montra.yaml"

// Config represents the top-level montra.yaml configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where documents are persisted.
type StorageConfig struct {
	Backend    storage.Backend `yaml:"backend"`
	SQLitePath string          `yaml:"sqlite_path,omitempty"`
}

// DisplayConfig controls how amounts are rendered.
type DisplayConfig struct {
	Currency     string `yaml:"currency"` // ISO 4217 code
	HideBalances bool   `yaml:"hide_balances"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// overrides are read from the environment and win over the file.
type overrides struct {
	Backend    string `env:"MONTRA_STORAGE_BACKEND"`
	SQLitePath string `env:"MONTRA_SQLITE_PATH"`
	Currency   string `env:"MONTRA_CURRENCY"`
	LogLevel   string `env:"MONTRA_LOG_LEVEL"`
	LogFormat  string `env:"MONTRA_LOG_FORMAT"`
}

// Load reads a montra.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Backend: storage.BackendFile},
		Display: DisplayConfig{Currency: "PHP"},
		Log:     LogConfig{Level: "warn", Format: "text"},
	}
}

// Resolve builds the effective config for a data directory: defaults, then
// path (or dir/montra.yaml when path is empty, skipped if missing), then
// dir/.env, then the process environment.
func Resolve(dir, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	cfg, err := Load(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = Default()
	default:
		return nil, err
	}

	environ, err := environment(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(environ); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays MONTRA_* variables from environ onto cfg.
func (c *Config) ApplyEnv(environ map[string]string) error {
	var o overrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	if o.Backend != "" {
		c.Storage.Backend = storage.Backend(strings.ToLower(o.Backend))
	}
	if o.SQLitePath != "" {
		c.Storage.SQLitePath = o.SQLitePath
	}
	if o.Currency != "" {
		c.Display.Currency = strings.ToUpper(o.Currency)
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Log.Format = o.LogFormat
	}
	return nil
}

// Validate reports every problem with the config at once.
func (c *Config) Validate() error {
	var errs []error
	if !c.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if money.GetCurrency(c.Display.Currency) == nil {
		errs = append(errs, fmt.Errorf("display.currency: unknown ISO 4217 code %q", c.Display.Currency))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// environment merges dir/.env (if present) under the process environment.
func environment(dir string) (map[string]string, error) {
	merged := map[string]string{}
	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	switch {
	case err == nil:
		for k, v := range dotenv {
			merged[k] = v
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	return merged, nil
}
