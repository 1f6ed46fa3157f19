package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidBaseURL is returned when the records service URL is unusable
var ErrInvalidBaseURL = errors.New("api.base_url must be an absolute http(s) URL")

type Config struct {
	// Records service
	API APIConfig `yaml:"api"`

	// Log output
	Log LogConfig `yaml:"log"`

	// How long cached reads stay fresh
	Cache CacheConfig `yaml:"cache"`

	// Terminal UI timing
	UI UIConfig `yaml:"ui"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"` // e.g. http://localhost:8080/api
}

type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
	File   string `yaml:"file"`   // "-" writes to stderr
}

type CacheConfig struct {
	ListStale   time.Duration `yaml:"list_stale"`
	DetailStale time.Duration `yaml:"detail_stale"`
	SearchStale time.Duration `yaml:"search_stale"`
}

type UIConfig struct {
	Debounce time.Duration `yaml:"debounce"` // quiet time before a search runs
	Toast    time.Duration `yaml:"toast"`    // how long notifications stay up
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "clientes")
	}
	return filepath.Join(homeDir, ".config", "clientes")
}

// DefaultConfigPath returns ~/.config/clientes/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(configDir(), "clientes.log"),
		},
		Cache: CacheConfig{
			ListStale:   5 * time.Minute,
			DetailStale: 5 * time.Minute,
			SearchStale: 2 * time.Minute,
		},
		UI: UIConfig{
			Debounce: 300 * time.Millisecond,
			Toast:    4 * time.Second,
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist.
// Environment variables (and a .env file in the working directory) override
// what the file says.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("CLIENTES_API_BASE_URL", getEnv("API_BASE_URL", c.API.BaseURL))
	c.Log.Level = getEnv("CLIENTES_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("CLIENTES_LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnv("CLIENTES_LOG_FILE", c.Log.File)
	c.Cache.ListStale = getEnvAsDuration("CLIENTES_LIST_STALE", c.Cache.ListStale)
	c.Cache.SearchStale = getEnvAsDuration("CLIENTES_SEARCH_STALE", c.Cache.SearchStale)
	c.Cache.DetailStale = getEnvAsDuration("CLIENTES_DETAIL_STALE", c.Cache.DetailStale)
	c.UI.Debounce = getEnvAsDuration("CLIENTES_DEBOUNCE", c.UI.Debounce)
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	raw := strings.TrimSpace(c.API.BaseURL)
	if raw == "" {
		return ErrInvalidBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.API.BaseURL)
	}
	c.API.BaseURL = raw
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// getEnv returns the variable or defaultValue when unset
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration parses the variable with time.ParseDuration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
