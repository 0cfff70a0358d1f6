package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	s, err := NewState()
	require.NoError(t, err)

	_, err = ulid.Parse(s.DistinctID)
	require.NoError(t, err, "distinct id should be a ULID")
	assert.NotZero(t, s.FirstSeenAt)
	assert.Equal(t, CurrentSchemaVersion, s.SchemaVersion)
}

func TestLoadOrCreateState_CreatesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	first, created, err := LoadOrCreateState(path)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := LoadOrCreateState(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.DistinctID, second.DistinctID)
	assert.Equal(t, first.FirstSeenAt, second.FirstSeenAt)
}

func TestLoadOrCreateState_ReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := LoadState(path)
	require.ErrorIs(t, err, ErrCorruptState)

	s, created, err := LoadOrCreateState(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, s.DistinctID)
}

func TestLoadState_Missing(t *testing.T) {
	_, err := LoadState(filepath.Join(t.TempDir(), "state.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStateTouch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewState()
	require.NoError(t, err)

	require.NoError(t, s.Touch(path))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, s.DistinctID, loaded.DistinctID)
	assert.NotZero(t, loaded.LastRunAt)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDataDir_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/data/phenhance", dir)

	path, err := StateFilePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/data/phenhance/state.json", path)
}
