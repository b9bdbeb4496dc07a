// ABOUTME: Configuration management for chirp with YAML config loading.
// ABOUTME: Handles backend selection, credentials, store location, env overrides, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in the config file.
const (
	BackendAPI = "api"
	BackendX   = "x"
)

// Config stores chirp configuration loaded from ~/.config/chirp/config.yaml.
type Config struct {
	Backend  string      `yaml:"backend,omitempty" validate:"omitempty,oneof=api x"`
	Language string      `yaml:"language,omitempty" validate:"omitempty,oneof=en ru"`
	API      APIConfig   `yaml:"api"`
	X        XConfig     `yaml:"x,omitempty"`
	Store    StoreConfig `yaml:"store,omitempty"`
	Log      LogConfig   `yaml:"log,omitempty"`

	// env records values taken from the environment so Save can leave
	// them out of the file.
	env map[string]envValue
}

// envValue is one environment override and the file value it replaced.
type envValue struct {
	file string
	env  string
}

// APIConfig holds tweet API settings.
type APIConfig struct {
	URL    string `yaml:"url" validate:"omitempty,url"`
	APIKey string `yaml:"api_key"`
}

// XConfig holds OAuth1 credentials for posting to X.
type XConfig struct {
	ConsumerKey    string `yaml:"consumer_key,omitempty"`
	ConsumerSecret string `yaml:"consumer_secret,omitempty"`
	AccessToken    string `yaml:"access_token,omitempty"`
	AccessSecret   string `yaml:"access_secret,omitempty"`
}

// StoreConfig selects where drafts and the session identity live.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty" validate:"omitempty,oneof=markdown sqlite"`
	Path   string `yaml:"path,omitempty"`
}

// LogConfig holds the log level.
type LogConfig struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

// complete reports whether all four credentials are set.
func (x XConfig) complete() bool {
	return x.ConsumerKey != "" && x.ConsumerSecret != "" && x.AccessToken != "" && x.AccessSecret != ""
}

// GetBackend returns the selected backend, defaulting to the tweet API.
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendAPI
	}
	return c.Backend
}

// GetLanguage returns the notification language, defaulting to English.
func (c *Config) GetLanguage() string {
	if c.Language == "" {
		return "en"
	}
	return c.Language
}

// GetStoreDriver returns the store driver, defaulting to markdown.
func (c *Config) GetStoreDriver() string {
	if c.Store.Driver == "" {
		return "markdown"
	}
	return c.Store.Driver
}

// HasRemote returns true if the selected backend is fully configured.
func (c *Config) HasRemote() bool {
	switch c.GetBackend() {
	case BackendX:
		return c.X.complete()
	default:
		return c.API.URL != "" && c.API.APIKey != ""
	}
}

// Validate checks field values and backend requirements.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.GetBackend() == BackendX && !c.X.complete() {
		return fmt.Errorf("invalid config: backend x requires consumer_key, consumer_secret, access_token and access_secret")
	}
	return nil
}

// GetStorePath returns the draft store directory.
func (c *Config) GetStorePath() (string, error) {
	if c.Store.Path != "" {
		return ExpandPath(c.Store.Path)
	}
	return DataDir()
}

// DataDir returns the default data directory.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "chirp"), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "chirp", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk and applies environment overrides.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	cfg.applyEnv()
	return &cfg, nil
}

// envFields lists the settings that can come from the environment.
func (c *Config) envFields() []struct {
	key string
	dst *string
} {
	return []struct {
		key string
		dst *string
	}{
		{"CHIRP_API_URL", &c.API.URL},
		{"CHIRP_API_KEY", &c.API.APIKey},
		{"X_CONSUMER_KEY", &c.X.ConsumerKey},
		{"X_CONSUMER_SECRET", &c.X.ConsumerSecret},
		{"X_ACCESS_TOKEN", &c.X.AccessToken},
		{"X_ACCESS_SECRET", &c.X.AccessSecret},
	}
}

// applyEnv overlays credentials from the environment.
func (c *Config) applyEnv() {
	for _, f := range c.envFields() {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		if c.env == nil {
			c.env = make(map[string]envValue)
		}
		c.env[f.key] = envValue{file: *f.dst, env: v}
		*f.dst = v
	}
}

// persisted returns the config as it should be written to disk. Settings
// still holding their environment value revert to what the file had.
func (c *Config) persisted() Config {
	out := *c
	out.env = nil
	for _, f := range out.envFields() {
		if o, ok := c.env[f.key]; ok && *f.dst == o.env {
			*f.dst = o.file
		}
	}
	return out
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	out := c.persisted()
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
