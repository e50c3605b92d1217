package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timeline/internal/timeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, timeline.DefaultPreset, cfg.Preset())
	assert.Equal(t, timeline.DefaultEncoder(), cfg.TimelineEncoder())
	assert.Equal(t, "timeline.db", filepath.Base(cfg.DBPath))
	assert.Empty(t, cfg.SeedGroups)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/tl.db
log_level: debug
window:
  preset: 6m
encoder:
  min_size: 4
  max_size: 20
  saturate_at: 60
  long_note_at: 10
seed_groups: [Work, Home]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tl.db", cfg.DBPath)
	assert.Equal(t, timeline.Preset6Months, cfg.Preset())
	assert.Equal(t, timeline.Encoder{MinSize: 4, MaxSize: 20, SaturateAt: 60, LongNoteAt: 10}, cfg.TimelineEncoder())
	assert.Equal(t, []string{"Work", "Home"}, cfg.SeedGroups)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TIMELINE_WINDOW_PRESET", "30d")
	t.Setenv("TIMELINE_DB_PATH", "/tmp/env.db")

	cfg, err := Load(writeConfig(t, "window:\n  preset: 12m\n"))
	require.NoError(t, err)
	assert.Equal(t, timeline.Preset30Days, cfg.Preset())
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"unknown preset":    "window:\n  preset: 7y\n",
		"max not above min": "encoder:\n  min_size: 10\n  max_size: 10\n",
		"zero min size":     "encoder:\n  min_size: 0\n",
		"bad log level":     "log_level: loud\n",
		"blank seed group":  "seed_groups: [Work, \"\"]\n",
		"zero saturation":   "encoder:\n  saturate_at: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnparsableFile(t *testing.T) {
	_, err := Load(writeConfig(t, "window: [unterminated\n"))
	assert.Error(t, err)
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default(t.TempDir()).Validate())
}
