package queries

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		desc string
		raw  string
		want []string
	}{
		{
			desc: "quoted and trailing-comma lines deduplicate",
			raw:  "\"foo\",\n\"foo\",\nbar,\n",
			want: []string{"foo", "bar"},
		},
		{
			desc: "whitespace is trimmed",
			raw:  "  hello world  \n\tweather today\t\n",
			want: []string{"hello world", "weather today"},
		},
		{
			desc: "blank lines are dropped",
			raw:  "one\n\n   \ntwo\n",
			want: []string{"one", "two"},
		},
		{
			desc: "lines that trim to nothing are dropped",
			raw:  "\",\"\n,,\nreal query\n",
			want: []string{"real query"},
		},
		{
			desc: "first occurrence wins",
			raw:  "b\na\nb\nc\na\n",
			want: []string{"b", "a", "c"},
		},
		{
			desc: "windows line endings",
			raw:  "alpha\r\nbeta\r\n",
			want: []string{"alpha", "beta"},
		},
		{
			desc: "byte order mark is ignored",
			raw:  "\ufefffirst\nsecond\n",
			want: []string{"first", "second"},
		},
		{
			desc: "inner quotes survive",
			raw:  "say \"cheese\" now\n",
			want: []string{"say \"cheese\" now"},
		},
		{
			desc: "empty input",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	require.NoError(t, os.WriteFile(path, []byte("\"foo\",\n\"foo\",\nbar,\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, got)
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
	assert.Empty(t, got)
}
