package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coast = `{"type": "LineString", "coordinates": [[120, 30], [121, 31]]}`

func TestListMissingDirectory(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "none"), nil)
	assert.Empty(t, c.List())
}

func TestAddListLoad(t *testing.T) {
	src := filepath.Join(t.TempDir(), "coast.geojson")
	require.NoError(t, os.WriteFile(src, []byte(coast), 0o644))

	dir := filepath.Join(t.TempDir(), "overlays")
	c := NewCatalog(dir, nil)
	name, err := c.Add(src)
	require.NoError(t, err)
	assert.Equal(t, "coast.geojson", name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	assert.Equal(t, []string{"coast.geojson"}, c.List())

	d, err := c.Load(name)
	require.NoError(t, err)
	assert.Len(t, d.Lines, 1)

	datas, failed := c.LoadAll([]string{"coast.geojson", "gone.csv"})
	assert.Len(t, datas, 1)
	assert.Equal(t, []string{"gone.csv"}, failed)

	require.NoError(t, c.Remove(name))
	assert.Empty(t, c.List())
	require.NoError(t, c.Remove(name))
}

func TestAddRejectsBadFiles(t *testing.T) {
	c := NewCatalog(t.TempDir(), nil)

	_, err := c.Add("/tmp/whatever.shp")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.geojson")
	require.NoError(t, os.WriteFile(bad, []byte("{}"), 0o644))
	_, err = c.Add(bad)
	assert.Error(t, err)
	assert.Empty(t, c.List())
}
