// Package profile locates Microsoft Edge browser profiles and stages them
// for automation, either in place or as a disposable copy.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

const envUserDataOverride = "EDGESEARCH_USER_DATA_DIR"

var profileDirPattern = regexp.MustCompile(`^Profile \d+$`)

// Profile is one Edge profile directory under the user data root.
type Profile struct {
	Name string // directory base name, e.g. "Default" or "Profile 2"
	Dir  string // absolute path
}

// UserDataRoot returns the Edge user data directory for this platform.
// EDGESEARCH_USER_DATA_DIR overrides the platform default, which is also the
// hook the tests use.
func UserDataRoot() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(envUserDataOverride)); dir != "" {
		return filepath.Clean(dir), nil
	}

	switch runtime.GOOS {
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("neither LOCALAPPDATA nor USERPROFILE is set")
			}
			local = filepath.Join(userProfile, "AppData", "Local")
		}
		return filepath.Join(local, "Microsoft", "Edge", "User Data"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "Microsoft Edge"), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "microsoft-edge"), nil
	}
}

// IsProfileDir reports whether name is the base name of an Edge profile
// directory: "Default" or "Profile <n>".
func IsProfileDir(name string) bool {
	return name == "Default" || profileDirPattern.MatchString(name)
}

// List returns the profiles under root sorted by name. A missing root yields
// an empty list without error; Edge simply isn't set up for this user.
func List(root string) ([]Profile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var profiles []Profile
	for _, entry := range entries {
		if !entry.IsDir() || !IsProfileDir(entry.Name()) {
			continue
		}
		profiles = append(profiles, Profile{
			Name: entry.Name(),
			Dir:  filepath.Join(root, entry.Name()),
		})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

// DisplayNames maps profile directory names to the friendly names Edge keeps
// in the Local State file under root. A missing file yields an empty map; a
// corrupt one additionally returns the parse error for the caller to log.
func DisplayNames(root string) (map[string]string, error) {
	raw, err := os.ReadFile(filepath.Join(root, "Local State"))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return map[string]string{}, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]string{}, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]string{}, fmt.Errorf("parse Local State: %w", err)
	}

	profileObj, _ := data["profile"].(map[string]interface{})
	infoCache, _ := profileObj["info_cache"].(map[string]interface{})

	names := make(map[string]string)
	for dir, rawEntry := range infoCache {
		if entry, ok := rawEntry.(map[string]interface{}); ok {
			if name, ok := entry["name"].(string); ok && name != "" {
				names[dir] = name
			}
		}
	}
	return names, nil
}
