// Package queries loads the list of search terms for a run.
package queries

import (
	"os"
	"strings"
)

// Load reads one query per line from the UTF-8 text file at path. Missing or
// unreadable files return the error alongside an empty list so callers can
// report and carry on.
func Load(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(raw)), nil
}

// Parse normalizes raw query text: surrounding whitespace, double quotes and
// commas are trimmed per line, blank lines are dropped, and duplicates are
// removed keeping the first occurrence.
func Parse(raw string) []string {
	raw = strings.TrimPrefix(raw, "\ufeff")

	seen := make(map[string]bool)
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		q := strings.Trim(strings.TrimSpace(line), `",`)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
