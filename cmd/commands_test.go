package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovenityjade/APTwitchBot/cli"
	"github.com/lovenityjade/APTwitchBot/errors"
	"github.com/lovenityjade/APTwitchBot/pkg/paths"
	"github.com/lovenityjade/APTwitchBot/schema"
	"github.com/lovenityjade/APTwitchBot/snapshot"
	"github.com/lovenityjade/APTwitchBot/testutil"
)

// testRoot assembles the command tree the way main does.
func testRoot() *cobra.Command {
	root := cli.NewStandardCommand("apfetcher", "test root")
	root.AddCommand(NewRunCmd())
	root.AddCommand(NewStatusCmd())
	root.AddCommand(NewStopCmd())
	root.AddCommand(NewStateCmd())
	root.AddCommand(NewLogsCmd())
	root.AddCommand(NewPathsCmd())
	root.AddCommand(NewConfigCmd())
	root.AddCommand(cli.NewSchemaCommand(schema.Embedded()))
	root.AddCommand(cli.NewVersionCommand("apfetcher"))
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := testRoot()
	root.SetArgs(args)

	var err error
	out := testutil.CaptureOutput(t, func() {
		err = root.Execute()
	})
	return out, err
}

func TestPathsCommand(t *testing.T) {
	testutil.IsolateHome(t)

	out, err := execute(t, "paths")
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &m))

	assert.Equal(t, paths.StateFilePath(), m["state_file"])
	assert.Equal(t, paths.PidFilePath(), m["pid_file"])
	assert.Equal(t, paths.UUIDFilePath(), m["uuid_file"])
	assert.Equal(t, paths.ConfigDir(), m["config_dir"])
}

func TestStateCommandMissingDocument(t *testing.T) {
	testutil.IsolateHome(t)

	_, err := execute(t, "state")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStateNotFound))
}

func TestStateCommandPrintsDocument(t *testing.T) {
	testutil.IsolateHome(t)

	writer := snapshot.NewWriter(paths.StateFilePath(), nil)
	require.NoError(t, writer.Write(snapshot.Document{
		Room:             snapshot.RoomSection{Seed: "abc123"},
		CheckedLocations: []int64{1, 2},
		Items:            []snapshot.ItemRecord{},
	}))

	out, err := execute(t, "state")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	room := doc["room"].(map[string]interface{})
	assert.Equal(t, "abc123", room["seed"])
}

func TestStopWithoutRunningFetcher(t *testing.T) {
	testutil.IsolateHome(t)

	_, err := execute(t, "stop")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotRunning))
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)

	var s map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "APTwitchBot Fetcher Configuration", s["title"])
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "apfetcher dev")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestConfigCommandShowsEffectiveConfig(t *testing.T) {
	testutil.IsolateHome(t)

	dir := t.TempDir()
	path := testutil.WriteConfig(t, dir, testutil.MinimalConfigYAML("Lovenity", "Ocarina of Time"))

	out, err := execute(t, "config", "-c", path)
	require.NoError(t, err)

	assert.Contains(t, out, "slot_name: Lovenity")
	assert.Contains(t, out, "game: Ocarina of Time")
	// Defaults are part of the effective config
	assert.Contains(t, out, "host: localhost")
	assert.Contains(t, out, "port: 38281")
}

func TestLogsCommandPrintsTail(t *testing.T) {
	testutil.IsolateHome(t)

	logPath := paths.LogFilePath()
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0755))
	content := "line one\nline two\nline three\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0644))

	out, err := execute(t, "logs", "-n", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "line two", lines[0])
	assert.Equal(t, "line three", lines[1])
}

func TestLogsCommandMissingFile(t *testing.T) {
	testutil.IsolateHome(t)

	out, err := execute(t, "logs")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}
