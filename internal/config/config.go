// Package config loads taskboard settings.
//
// Values are resolved in this order, later sources winning:
//   - built-in defaults
//   - the YAML file named by --config or TASKBOARD_CONFIG, if any
//   - TASKBOARD_* environment variables
//   - command-line flags (applied by the cmd package)
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
)

const (
	// EnvConfigFile names the config file when --config is not given.
	EnvConfigFile = "TASKBOARD_CONFIG"
	// EnvAddr overrides server.addr.
	EnvAddr = "TASKBOARD_ADDR"
	// EnvServer overrides client.server.
	EnvServer = "TASKBOARD_SERVER"

	DefaultAddr            = "0.0.0.0:8000"
	DefaultServerURL       = "http://localhost:8000"
	DefaultTimeout         = 10 * time.Second
	DefaultTickInterval    = time.Second
	DefaultRetryMaxElapsed = 5 * time.Second
)

// Config is the complete taskboard configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
}

// ServerConfig configures `taskboard serve`.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Seed tasks loaded into the store at startup.
	Seed []SeedTask `yaml:"seed,omitempty"`
}

// SeedTask is a task preloaded by the server.
type SeedTask struct {
	Title string `yaml:"title"`
	Done  bool   `yaml:"done"`
}

// ClientConfig configures the client subcommands.
type ClientConfig struct {
	// Server is the base URL of the task server.
	Server string `yaml:"server"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// TickInterval is how long each ticker state is shown.
	TickInterval time.Duration `yaml:"tick_interval"`

	// RetryMaxElapsed bounds retries of the reconciliation fetch.
	RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: 5 * time.Second,
		},
		Client: ClientConfig{
			Server:          DefaultServerURL,
			Timeout:         DefaultTimeout,
			TickInterval:    DefaultTickInterval,
			RetryMaxElapsed: DefaultRetryMaxElapsed,
		},
	}
}

// Load builds a Config from defaults, the optional file at path (or
// $TASKBOARD_CONFIG when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if server := os.Getenv(EnvServer); server != "" {
		c.Client.Server = server
	}
}

// Validate checks every field for usable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return taskerrors.NewInvalidConfigError("server.addr", c.Server.Addr, "must not be empty")
	}
	if c.Server.ShutdownTimeout < 0 {
		return taskerrors.NewInvalidConfigError("server.shutdown_timeout", c.Server.ShutdownTimeout.String(), "must not be negative")
	}
	for i, seed := range c.Server.Seed {
		if strings.TrimSpace(seed.Title) == "" {
			return taskerrors.NewInvalidConfigError(fmt.Sprintf("server.seed[%d].title", i), seed.Title, "must not be empty")
		}
	}

	u, err := url.Parse(c.Client.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return taskerrors.NewInvalidConfigError("client.server", c.Client.Server, "must be an http(s) URL")
	}
	if c.Client.Timeout <= 0 {
		return taskerrors.NewInvalidConfigError("client.timeout", c.Client.Timeout.String(), "must be positive")
	}
	if c.Client.TickInterval <= 0 {
		return taskerrors.NewInvalidConfigError("client.tick_interval", c.Client.TickInterval.String(), "must be positive")
	}
	if c.Client.RetryMaxElapsed < 0 {
		return taskerrors.NewInvalidConfigError("client.retry_max_elapsed", c.Client.RetryMaxElapsed.String(), "must not be negative")
	}
	return nil
}

// BaseURL returns the client server URL without a trailing slash.
func (c *ClientConfig) BaseURL() string {
	return strings.TrimRight(c.Server, "/")
}
