package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorAbsentFileStartsFromBeginning(t *testing.T) {
	t.Parallel()

	c, err := NewCursor(filepath.Join(t.TempDir(), "cursor.json"))
	require.NoError(t, err)

	last, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cursor.json")
	c, err := NewCursor(path)
	require.NoError(t, err)

	require.NoError(t, c.Save(314159))

	last, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(314159), last)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_update_id":314159}`, string(raw))
}

func TestCursorRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cursor.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	c, err := NewCursor(path)
	require.NoError(t, err)

	_, err = c.Load()
	require.Error(t, err)
}
