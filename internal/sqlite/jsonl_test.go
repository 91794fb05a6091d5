package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func TestReadJSONL(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty file", "", 0},
		{"single record", `{"a":1}` + "\n", 1},
		{"blank lines skipped", "{\"a\":1}\n\n{\"a\":2}\n", 2},
		{"malformed skipped", "{\"a\":1}\n{broken\n{\"a\":3}\n", 2},
		{"no trailing newline", `{"a":1}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.jsonl")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			records, err := readJSONL(path)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestReadJSONLMissingFile(t *testing.T) {
	records, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteJSONLReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, GroupsFile)
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	groups := []types.Group{{GroupID: 1, Name: "a", Enabled: true}, {GroupID: 2, Name: "b"}}
	require.NoError(t, writeJSONL(path, groups))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"{\"group_id\":1,\"group_name\":\"a\",\"is_enabled\":true}\n{\"group_id\":2,\"group_name\":\"b\",\"is_enabled\":false}\n",
		string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")

	got, err := decodeJSONL[types.Group](path)
	require.NoError(t, err)
	assert.Equal(t, groups, got)
}

func TestWriteJSONLMissingDir(t *testing.T) {
	err := writeJSONL(filepath.Join(t.TempDir(), "nope", "x.jsonl"), []int{1})
	assert.Error(t, err)
}
