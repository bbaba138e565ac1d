package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProfiles(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"Profile 10", "NotAProfile", "Default", "Profile 1", "Crash Reports"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, dir), 0o755))
	}
	// A stray file with a profile-looking name must not be listed.
	require.NoError(t, os.WriteFile(filepath.Join(root, "Profile 2"), []byte("x"), 0o644))

	profiles, err := List(root)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Default", profiles[0].Name)
	assert.Equal(t, "Profile 1", profiles[1].Name)
	assert.Equal(t, "Profile 10", profiles[2].Name)
	assert.Equal(t, filepath.Join(root, "Default"), profiles[0].Dir)
}

func TestListProfilesMissingRoot(t *testing.T) {
	profiles, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestIsProfileDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Default", true},
		{"Profile 1", true},
		{"Profile 10", true},
		{"Profile 0", true},
		{"Profile", false},
		{"Profile ", false},
		{"Profile x", false},
		{"profile 1", false},
		{"default", false},
		{"NotAProfile", false},
		{"Profile 1 backup", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProfileDir(tt.name))
		})
	}
}

func TestDisplayNames(t *testing.T) {
	root := t.TempDir()
	localState := `{
		"profile": {
			"info_cache": {
				"Default": {"name": "Personal"},
				"Profile 1": {"name": "Work"},
				"Profile 2": {"name": ""}
			}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "Local State"), []byte(localState), 0o644))

	names, err := DisplayNames(root)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Default": "Personal", "Profile 1": "Work"}, names)
}

func TestDisplayNamesMissingFile(t *testing.T) {
	names, err := DisplayNames(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDisplayNamesCorruptFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Local State"), []byte("{not json"), 0o644))

	names, err := DisplayNames(root)
	assert.Error(t, err)
	assert.Empty(t, names)
}

func TestUserDataRootOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EDGESEARCH_USER_DATA_DIR", dir+string(filepath.Separator))

	root, err := UserDataRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), root)
}
