package cmd

import (
	"testing"

	"edgesearch/internal/profile"
)

func TestFormatProfileLabel(t *testing.T) {
	cases := []struct {
		dir      string
		friendly string
		want     string
	}{
		{"Default", "Work", "Work (Default)"},
		{"Profile 1", "", "Profile 1"},
		{"Default", "default", "default"},
		{"Profile 2", "Profile 2", "Profile 2"},
	}
	for _, tc := range cases {
		if got := formatProfileLabel(tc.dir, tc.friendly); got != tc.want {
			t.Errorf("formatProfileLabel(%q, %q) = %q, want %q", tc.dir, tc.friendly, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw     string
		want    profile.StageMode
		wantErr bool
	}{
		{"direct", profile.ModeDirect, false},
		{"copy", profile.ModeCopy, false},
		{"  Copy ", profile.ModeCopy, false},
		{"DIRECT", profile.ModeDirect, false},
		{"inplace", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := parseMode(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseMode(%q) expected an error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseMode(%q) returned %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseMode(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestValidateSearchCount(t *testing.T) {
	for _, ok := range []string{"1", "5", " 20 ", "100"} {
		if err := validateSearchCount(ok); err != nil {
			t.Errorf("validateSearchCount(%q) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []string{"", "0", "-3", "five", "1.5"} {
		if err := validateSearchCount(bad); err == nil {
			t.Errorf("validateSearchCount(%q) = nil, want error", bad)
		}
	}
}
