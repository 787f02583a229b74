package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cpuPath := filepath.Join(dir, "cpu.prof")
	memPath := filepath.Join(dir, "mem.prof")

	p := New(cpuPath, memPath)
	require.NoError(t, p.Start())

	// Burn a little CPU so the profile has samples to record.
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i
	}
	_ = sum

	require.NoError(t, p.Stop())

	cpuInfo, err := os.Stat(cpuPath)
	require.NoError(t, err)
	assert.Greater(t, cpuInfo.Size(), int64(0))

	memInfo, err := os.Stat(memPath)
	require.NoError(t, err)
	assert.Greater(t, memInfo.Size(), int64(0))
}

func TestProfilerWithoutPaths(t *testing.T) {
	p := New("", "")
	require.NoError(t, p.Start())
	require.NoError(t, p.Stop())
}

func TestProfilerBadCPUPath(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "missing", "cpu.prof"), "")
	require.Error(t, p.Start())
	// Stop after a failed Start must not panic or error.
	require.NoError(t, p.Stop())
}
