package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `logging:
  level: "debug"
  format: "console"
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "prometheus"
      conf:
        registry: "private"
registry:
  case_fold: true
  event_buffer: 16
  preload:
    - type: "objreg.Probe"
      args: [42]
      settings:
        label: "primary"
      alias: "main"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format", cfg.Logging.Format, "console"},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics.sinks", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "prometheus", true},
		{"metrics.sinks.conf", cfg.Metrics.Sinks[0].Conf["registry"], "private"},
		{"registry.case_fold", cfg.Registry.CaseFold, true},
		{"registry.event_buffer", cfg.Registry.EventBuffer, 16},
		{"registry.preload.type", cfg.Registry.Preload[0].Type, "objreg.Probe"},
		{"registry.preload.alias", cfg.Registry.Preload[0].Alias, "main"},
		{"registry.preload.settings", cfg.Registry.Preload[0].Settings["label"], "primary"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	require.Len(t, cfg.Registry.Preload[0].Args, 1)
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("OBJREG_LOGGING__LEVEL", "warn")
	t.Setenv("OBJREG_REGISTRY__CASE_FOLD", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 64, cfg.Registry.EventBuffer)
	assert.True(t, cfg.Registry.CaseFold)
	assert.Empty(t, cfg.Metrics.Sinks)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"logging":{"level":"error"},"registry":{"event_buffer":4}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Registry.EventBuffer)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "bad.yaml", "logging:\n  format: xml\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "bad.yaml", "registry:\n  preload:\n    - alias: x\n"))
	assert.Error(t, err)
}
