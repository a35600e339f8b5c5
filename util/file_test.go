package util

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndAppend(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.txt")
	require.NoError(t, WriteToFile(p, "a", "b"))
	require.NoError(t, AppendToFile(p, "c"))

	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", string(bs))
}

func TestWriteJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(p, map[string]int{"episodes": 10}))

	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	out := make(map[string]int)
	require.NoError(t, json.Unmarshal(bs, &out))
	assert.Equal(t, 10, out["episodes"])
}
