package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvServer, "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultServerURL, cfg.Client.Server)
	assert.Equal(t, DefaultTimeout, cfg.Client.Timeout)
	assert.Equal(t, time.Second, cfg.Client.TickInterval)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9000
  seed:
    - title: Buy milk
    - title: Walk dog
      done: true
client:
  server: http://127.0.0.1:9000/
  tick_interval: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []SeedTask{{Title: "Buy milk"}, {Title: "Walk dog", Done: true}}, cfg.Server.Seed)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Client.BaseURL())
	assert.Equal(t, 250*time.Millisecond, cfg.Client.TickInterval)
	// Unset keys keep their defaults
	assert.Equal(t, DefaultTimeout, cfg.Client.Timeout)
}

func TestLoad_FileFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  addr: :7000\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  addr: :7000\nclient:\n  server: http://a:1\n")
	t.Setenv(EnvAddr, ":7001")
	t.Setenv(EnvServer, "http://b:2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Server.Addr)
	assert.Equal(t, "http://b:2", cfg.Client.Server)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"Empty addr", func(c *Config) { c.Server.Addr = " " }, "server.addr"},
		{"Bad server scheme", func(c *Config) { c.Client.Server = "ftp://x" }, "client.server"},
		{"Server without host", func(c *Config) { c.Client.Server = "http://" }, "client.server"},
		{"Zero timeout", func(c *Config) { c.Client.Timeout = 0 }, "client.timeout"},
		{"Zero tick", func(c *Config) { c.Client.TickInterval = 0 }, "client.tick_interval"},
		{"Negative retry", func(c *Config) { c.Client.RetryMaxElapsed = -time.Second }, "client.retry_max_elapsed"},
		{"Blank seed", func(c *Config) { c.Server.Seed = []SeedTask{{Title: ""}} }, "server.seed[0].title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			taskErr, ok := taskerrors.As(err)
			require.True(t, ok)
			assert.Equal(t, taskerrors.ErrorCategoryConfiguration, taskErr.Category)
			assert.Equal(t, tt.field, taskErr.Context["field"])
		})
	}

	assert.NoError(t, Default().Validate())
}
