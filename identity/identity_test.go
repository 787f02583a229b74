package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMintsAndReuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uuid.json")

	first, err := Resolve(path, "archipelago.gg:38281")
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err, "minted id must be a valid UUID")

	again, err := Resolve(path, "archipelago.gg:38281")
	require.NoError(t, err)
	assert.Equal(t, first, again, "the same host keeps its id across calls")

	other, err := Resolve(path, "localhost:38281")
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "each host gets its own id")
}

func TestResolveSurvivesCorruptCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uuid.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	id, err := Resolve(path, "localhost:38281")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// The cache was rewritten; the id now survives.
	again, err := Resolve(path, "localhost:38281")
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestResolvePersistFailureStillYieldsID(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	id, err := Resolve(filepath.Join(blocker, "uuid.json"), "localhost:38281")
	assert.Error(t, err, "persisting under a file must fail")
	assert.NotEmpty(t, id, "the id is still usable this run")
}
