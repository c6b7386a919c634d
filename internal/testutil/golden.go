package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set.
const UpdateGoldenEnv = "TASKDESK_UPDATE_GOLDEN"

// GoldenPath returns the file backing the golden output called name.
func GoldenPath(name string) string {
	return filepath.Join("testdata", name+".golden")
}

// GoldenString compares got with testdata/<name>.golden.
func GoldenString(t *testing.T, name, got string) {
	t.Helper()
	path := GoldenPath(name)

	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(got), 0o644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "golden file %s; set %s=1 to create it", path, UpdateGoldenEnv)
	assert.Equal(t, string(want), got, "output differs from %s", path)
}
