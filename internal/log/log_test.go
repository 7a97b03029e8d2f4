package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	require.NoError(t, Init(false, path))

	GetSugaredLogger().Infow("dataset opened", "path", "a.nc")
	Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "dataset opened")
}

func TestInitEmptyPathIsNop(t *testing.T) {
	require.NoError(t, Init(true, ""))
	assert.NotNil(t, GetSugaredLogger())
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath("logs")
	assert.True(t, strings.HasPrefix(filepath.Base(p), "ncbrowse_"))
	assert.Equal(t, ".log", filepath.Ext(p))
}
