package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := New()
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxFrames)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "settings.json", filepath.Base(cfg.SettingsPath))
	assert.Equal(t, "overlays", filepath.Base(cfg.OverlayDir))
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	v := New()
	set := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(set, v))
	require.NoError(t, set.Parse([]string{"--max-frames", "7", "-d", "--overlay-dir", "/tmp/ov"}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxFrames)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/ov", cfg.OverlayDir)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("NCBROWSE_MAX-FRAMES", "3")
	t.Setenv("NCBROWSE_DEBUG", "true")
	v := New()
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ncbrowse.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max-frames": 12, "colormap-dir": "/pal"}`), 0o644))

	v := New()
	v.Set("config", path)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.MaxFrames)
	assert.Equal(t, "/pal", cfg.ColormapDir)
}

func TestLoadRejectsNonPositiveFrames(t *testing.T) {
	v := New()
	v.Set("max-frames", 0)
	_, err := Load(v)
	assert.Error(t, err)
}
