package serp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "results.html"))
	require.NoError(t, err)

	results, err := Parse(string(raw))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Profiling Go Programs - The Go Programming Language", results[0].Title)
	assert.Equal(t, "https://go.dev/blog/pprof", results[0].URL)
	assert.Contains(t, results[0].Snippet, "Loop Recognition")
	assert.NotContains(t, results[0].Snippet, "\n")

	assert.Equal(t, "pprof package - runtime/pprof", results[1].Title)

	// Snippets outside a caption wrapper still come through.
	assert.Equal(t, "Snippet without a caption wrapper.", results[2].Snippet)
}

func TestParseNoResults(t *testing.T) {
	results, err := Parse("<html><body><ol id=\"b_results\"></ol></body></html>")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestParseEmptyDocument(t *testing.T) {
	results, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, results)
}
