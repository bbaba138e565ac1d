package appdirs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseDirHonorsOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EDGESEARCH_HOME", dir+string(filepath.Separator))

	got, err := BaseDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), got)
}

func TestLogsDirHonorsOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EDGESEARCH_LOG_DIR", dir)

	got, err := LogsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), got)
}

func TestLogsDirNestsUnderBase(t *testing.T) {
	base := t.TempDir()
	t.Setenv("EDGESEARCH_HOME", base)
	t.Setenv("EDGESEARCH_LOG_DIR", "")

	got, err := LogsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "logs"), got)
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(path))
	assert.DirExists(t, path)

	assert.Error(t, EnsureDir("  "))
}
