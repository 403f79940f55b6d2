package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
discovery:
  host: registry.local
  port: 8888
room:
  world_file: content/world.yaml
  host: 127.0.0.1
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "registry.local", cfg.Discovery.Host)
	assert.Equal(t, 8888, cfg.Discovery.Port)
	assert.Equal(t, "registry.local:8888", cfg.Discovery.Addr())
	assert.Equal(t, "content/world.yaml", cfg.Room.WorldFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Discovery.Host)
	assert.Equal(t, 8888, cfg.Discovery.Port)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidPort(t *testing.T) {
	path := writeConfig(t, `
discovery:
  port: 70000
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovery.port")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: loud
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8888", cfg.Discovery.Addr())
}

func TestPropertyValidatePortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(-100, 100000).Draw(t, "port")
		cfg := Default()
		cfg.Discovery.Port = port
		err := cfg.Validate()
		if port >= 1 && port <= 65535 {
			if err != nil {
				t.Fatalf("valid port %d rejected: %v", port, err)
			}
		} else if err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}
