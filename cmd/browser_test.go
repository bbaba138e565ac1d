package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestIsProfileLockError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("websocket dial failed"), false},
		{errors.New("[launcher] Failed to get the debug url: The profile appears to be in use by another Chromium process (ProcessSingleton)"), true},
		{errors.New("SingletonLock exists, owned by pid 4242"), true},
	}
	for _, tc := range cases {
		if got := isProfileLockError(tc.err); got != tc.want {
			t.Errorf("isProfileLockError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestFindEdgeBinaryHonorsExplicitPath(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "msedge")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	viper.Set("edge.binary", bin)
	t.Cleanup(func() { viper.Set("edge.binary", "") })

	got, err := findEdgeBinary()
	if err != nil {
		t.Fatalf("findEdgeBinary() returned %v", err)
	}
	if got != bin {
		t.Fatalf("findEdgeBinary() = %q, want %q", got, bin)
	}
}

func TestFindEdgeBinaryRejectsMissingExplicitPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "msedge")

	viper.Set("edge.binary", missing)
	t.Cleanup(func() { viper.Set("edge.binary", "") })

	_, err := findEdgeBinary()
	if err == nil {
		t.Fatal("findEdgeBinary() succeeded for a path that does not exist")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Fatalf("error %q does not name the missing path", err)
	}
}
