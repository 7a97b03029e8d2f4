package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncbrowse/internal/dataset/datasettest"
)

type countingLoader struct {
	calls map[string]int
	err   error
}

func (c *countingLoader) load(path string) (*Dataset, error) {
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[path]++
	if c.err != nil {
		return nil, c.err
	}
	return &Dataset{
		Path:     path,
		DataVars: []*Variable{{Name: "v", Dims: []string{"time"}, Shape: []int{3}, Type: "float", Attrs: []Attr{{Name: "units", Value: "m"}}}},
	}, nil
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	return p
}

func TestOpenMissingPathLeavesCacheUnchanged(t *testing.T) {
	loader := &countingLoader{}
	r := NewRegistryWithLoader(loader.load, nil)
	existing := touch(t, t.TempDir(), "a.nc")
	_, err := r.Open(existing)
	require.NoError(t, err)

	_, err = r.Open(filepath.Join(t.TempDir(), "missing.nc"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{existing}, r.Paths())
	assert.Equal(t, existing, r.CurrentPath())
}

func TestOpenTwiceReturnsCachedHandle(t *testing.T) {
	loader := &countingLoader{}
	r := NewRegistryWithLoader(loader.load, nil)
	dir := t.TempDir()
	a := touch(t, dir, "a.nc")
	b := touch(t, dir, "b.nc")

	first, err := r.Open(a)
	require.NoError(t, err)
	assert.Equal(t, a, r.CurrentPath())

	_, err = r.Open(b)
	require.NoError(t, err)
	assert.Equal(t, b, r.CurrentPath())

	second, err := r.Open(a)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.calls[a])
	assert.Equal(t, a, r.CurrentPath())
}

func TestOpenLoadFailureWrapsCause(t *testing.T) {
	cause := errors.New("bad magic")
	r := NewRegistryWithLoader((&countingLoader{err: cause}).load, nil)

	_, err := r.Open(touch(t, t.TempDir(), "a.nc"))
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, r.Paths())
	assert.Nil(t, r.Current())
}

func TestCloseNotOpenIsNoop(t *testing.T) {
	r := NewRegistryWithLoader((&countingLoader{}).load, nil)
	r.Close("")
	r.Close("/nowhere.nc")
	assert.Empty(t, r.Paths())

	a := touch(t, t.TempDir(), "a.nc")
	_, err := r.Open(a)
	require.NoError(t, err)
	r.Close("/nowhere.nc")
	assert.Equal(t, []string{a}, r.Paths())
	assert.Equal(t, a, r.CurrentPath())
}

func TestCloseCurrentClearsPointer(t *testing.T) {
	r := NewRegistryWithLoader((&countingLoader{}).load, nil)
	dir := t.TempDir()
	a := touch(t, dir, "a.nc")
	b := touch(t, dir, "b.nc")
	_, _ = r.Open(a)
	_, _ = r.Open(b)

	r.Close("")
	assert.Nil(t, r.Current())
	assert.Equal(t, "", r.CurrentPath())
	assert.NotNil(t, r.Get(a))
	assert.Nil(t, r.Get(b))

	assert.True(t, r.SetCurrent(a))
	assert.False(t, r.SetCurrent(b))
	r.Close(a)
	assert.Empty(t, r.Paths())
	assert.Nil(t, r.Current())
}

func TestCloseAll(t *testing.T) {
	r := NewRegistryWithLoader((&countingLoader{}).load, nil)
	dir := t.TempDir()
	_, _ = r.Open(touch(t, dir, "a.nc"))
	_, _ = r.Open(touch(t, dir, "b.nc"))

	r.CloseAll()
	assert.Empty(t, r.Paths())
	assert.Nil(t, r.Current())
}

func TestVariableInfoMiss(t *testing.T) {
	r := NewRegistryWithLoader((&countingLoader{}).load, nil)
	a := touch(t, t.TempDir(), "a.nc")
	_, _ = r.Open(a)

	info, ok := r.VariableInfo(a, "v")
	require.True(t, ok)
	assert.Equal(t, "m", info.Attrs["units"])
	assert.Equal(t, "float", info.Type)

	_, ok = r.VariableInfo(a, "missing")
	assert.False(t, ok)
	_, ok = r.VariableInfo("/not/open.nc", "v")
	assert.False(t, ok)
}

func TestRegistryWithRealFiles(t *testing.T) {
	r := NewRegistry(nil)
	path := datasettest.Ocean(t, t.TempDir())

	ds, err := r.Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, ds.Path)

	info, ok := r.VariableInfo("", "temp")
	require.True(t, ok)
	assert.Equal(t, []string{"time", "lat", "lon"}, info.Dims)

	r.CloseAll()
	_, err = ds.Read("temp")
	assert.Error(t, err)
}
