package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/wgdashboard/wgdash/pkg/user"
	"github.com/wgdashboard/wgdash/pkg/validate"
)

const (
	DefaultOrigin  = "http://localhost:10086"
	DefaultTimeout = 20 * time.Second

	EnvConfig           = "WGDASH_CONFIG"
	EnvOrigin           = "WGDASH_ORIGIN"
	EnvDatabase         = "WGDASH_DB"
	EnvCredentialHelper = "WGDASH_CREDENTIAL_HELPER"
	EnvTimeout          = "WGDASH_TIMEOUT"
	EnvLogLevel         = "WGDASH_LOG_LEVEL"
)

// candidate file names, in lookup order, inside the state directory
var configFiles = []string{"config.yaml", "config.yml", "config.toml"}

// Config is the client configuration. Origin is the dashboard the client talks
// to when no cross-server selection is active; it may carry the dashboard's
// app prefix as a path (e.g. https://example.com/wgdashboard).
type Config struct {
	Origin           string `yaml:"origin,omitempty" toml:"origin,omitempty" validate:"required,dashboardurl"`
	Database         string `yaml:"database,omitempty" toml:"database,omitempty"`
	CredentialHelper string `yaml:"credential_helper,omitempty" toml:"credential_helper,omitempty"`
	Timeout          string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	LogLevel         string `yaml:"log_level,omitempty" toml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	Hints            *bool  `yaml:"hints,omitempty" toml:"hints,omitempty"`

	path string
}

// Load reads the configuration file at path. An empty path means
// $WGDASH_CONFIG, then the first existing file in ~/.wgdash. A missing default
// file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		found, err := defaultPath()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := &Config{path: path}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := unmarshal(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadEnv()
	c.loadDefaults()
	c.Origin = strings.TrimRight(c.Origin, "/")
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// Path is the file the configuration was read from, if any.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

func (c *Config) HintsEnabled() bool {
	return c.Hints == nil || *c.Hints
}

// Save writes the configuration back to its file, in the format given by its
// extension.
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := user.StateDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, configFiles[0])
	}
	var (
		data []byte
		err  error
	)
	if isTOML(c.path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}

func (c *Config) loadDefaults() {
	if c.Origin == "" {
		c.Origin = DefaultOrigin
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout.String()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvOrigin); v != "" {
		c.Origin = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvCredentialHelper); v != "" {
		c.CredentialHelper = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

func defaultPath() (string, error) {
	dir, err := user.StateDir()
	if err != nil {
		return "", err
	}
	for _, name := range configFiles {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return filepath.Join(dir, configFiles[0]), nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
