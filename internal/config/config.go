// Package config loads the server configuration from a YAML file, a .env
// file and GIVEAWAY_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Admin  AdminConfig  `yaml:"admin"`
	Offers OffersConfig `yaml:"offers"`
	Stats  StatsConfig  `yaml:"stats"`
	Modal  ModalConfig  `yaml:"modal"`
	Locale LocaleConfig `yaml:"locale"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address (default: :8080)
	Addr string `yaml:"addr"`
	// Debug switches gin to debug mode and verbose logging
	Debug bool `yaml:"debug"`
}

// StoreConfig configures the document store.
type StoreConfig struct {
	// Path is the SQLite database file
	Path string `yaml:"path"`
}

// AdminConfig holds the basic auth credentials of the admin area.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// OffersConfig configures the partner offer integration.
type OffersConfig struct {
	// APIBaseURL is where POST /api/add-offer is sent (empty disables the call)
	APIBaseURL string `yaml:"api_base_url"`
	// APITimeout bounds each outbound call
	APITimeout time.Duration `yaml:"api_timeout"`
	// RedirectBaseURL is the external page visitors are sent to from /go
	RedirectBaseURL string `yaml:"redirect_base_url"`
}

// StatsConfig configures the site stats job.
type StatsConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// ModalConfig configures the participation success modal.
type ModalConfig struct {
	// Delay before the modal continues by itself
	Delay time.Duration `yaml:"delay"`
	// JanitorInterval is how often stale sessions are swept
	JanitorInterval time.Duration `yaml:"janitor_interval"`
	// MaxAge is how long an untouched session is kept
	MaxAge time.Duration `yaml:"max_age"`
}

// LocaleConfig configures the language preference.
type LocaleConfig struct {
	Default string `yaml:"default"`
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Path: "data/giveaway.db"},
		Admin:  AdminConfig{Username: "admin", Password: "change-me"},
		Offers: OffersConfig{
			APITimeout:      10 * time.Second,
			RedirectBaseURL: "https://offers.example.com/claim",
		},
		Stats: StatsConfig{RefreshInterval: 10 * time.Minute},
		Modal: ModalConfig{
			Delay:           3000 * time.Millisecond,
			JanitorInterval: 10 * time.Minute,
			MaxAge:          time.Hour,
		},
		Locale: LocaleConfig{Default: "en"},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		return fmt.Errorf("admin.username and admin.password are required")
	}
	if c.Offers.APIBaseURL != "" {
		if err := absoluteURL(c.Offers.APIBaseURL); err != nil {
			return fmt.Errorf("offers.api_base_url: %w", err)
		}
	}
	if err := absoluteURL(c.Offers.RedirectBaseURL); err != nil {
		return fmt.Errorf("offers.redirect_base_url: %w", err)
	}
	if c.Stats.RefreshInterval <= 0 {
		return fmt.Errorf("stats.refresh_interval must be positive")
	}
	if c.Modal.Delay <= 0 || c.Modal.JanitorInterval <= 0 || c.Modal.MaxAge <= 0 {
		return fmt.Errorf("modal durations must be positive")
	}
	return nil
}

func absoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}

// LoadFromFile reads a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load builds the final configuration. path may be empty; envFile is loaded
// when it exists.
func Load(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GIVEAWAY_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"GIVEAWAY_ADDR":               &c.Server.Addr,
		"GIVEAWAY_DB_PATH":            &c.Store.Path,
		"GIVEAWAY_ADMIN_USERNAME":     &c.Admin.Username,
		"GIVEAWAY_ADMIN_PASSWORD":     &c.Admin.Password,
		"GIVEAWAY_OFFER_API_URL":      &c.Offers.APIBaseURL,
		"GIVEAWAY_OFFER_REDIRECT_URL": &c.Offers.RedirectBaseURL,
		"GIVEAWAY_DEFAULT_LANGUAGE":   &c.Locale.Default,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"GIVEAWAY_STATS_INTERVAL": &c.Stats.RefreshInterval,
		"GIVEAWAY_MODAL_DELAY":    &c.Modal.Delay,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if v, ok := lookup("GIVEAWAY_DEBUG"); ok {
		c.Server.Debug = v == "true" || v == "1"
	}
	return nil
}
