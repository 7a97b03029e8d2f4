package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncbrowse/internal/dataset/datasettest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	Root.SetOut(&out)
	Root.SetErr(&out)
	Root.SetArgs(append([]string{
		"--settings", filepath.Join(dir, "settings.json"),
		"--bookmarks", filepath.Join(dir, "bookmarks.json"),
		"--overlay-dir", filepath.Join(dir, "overlays"),
		"--colormap-dir", filepath.Join(dir, "colormaps"),
		"--log-file", filepath.Join(dir, "ncbrowse.log"),
	}, args...))
	err := Root.Execute()
	return out.String(), err
}

func TestInfo(t *testing.T) {
	path := datasettest.Ocean(t, t.TempDir())
	out, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Data Variables")
	assert.Contains(t, out, "sst")
	assert.Contains(t, out, "geomap")
}

func TestExport(t *testing.T) {
	path := datasettest.Ocean(t, t.TempDir())
	dst := filepath.Join(t.TempDir(), "sst.svg")
	out, err := run(t, "export", path, "sst", "-o", dst, "--type", "heatmap")
	require.NoError(t, err)
	assert.FileExists(t, dst)
	assert.Contains(t, out, "wrote "+dst+" (heatmap")

	_, err = run(t, "export", path, "sst", "-o", filepath.Join(t.TempDir(), "sst.bmp"), "--type", "auto")
	assert.Error(t, err)

	_, err = run(t, "export", path, "missing", "-o", dst, "--type", "auto")
	assert.Error(t, err)
}
