// Package testutil holds the small fixtures shared by command and
// integration tests.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// MinimalConfigYAML returns the smallest valid configuration for the given
// slot and game.
func MinimalConfigYAML(slotName, game string) string {
	return `archipelago:
  slot_name: ` + slotName + `
  game: ` + game + `
`
}

// WriteConfig writes an aptwitchbot.yml with the given content into dir and
// returns its path.
func WriteConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "aptwitchbot.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// CaptureOutput runs fn with os.Stdout redirected and returns everything it
// printed. Commands write straight to stdout, so tests capture at the fd
// level rather than through cobra's writer.
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	outC := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		outC <- string(data)
	}()

	fn()

	require.NoError(t, w.Close())
	return <-outC
}

// IsolateHome points HOME and APTB_HOME at a fresh temp directory so tests
// never read or write the invoking user's real configuration and state.
// It returns the temp directory.
func IsolateHome(t *testing.T) string {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("APTB_HOME", filepath.Join(tmp, "aptb"))
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	return tmp
}

// RandomString generates a random hex string of the specified length.
func RandomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}
