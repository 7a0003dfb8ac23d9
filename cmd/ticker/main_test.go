package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setTestEnv(t *testing.T, trackerPath string) {
	t.Helper()
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_LOG_LEVEL", "error")
	t.Setenv("TRACKER_FILE", trackerPath)
	t.Setenv("STATE_STORE", "memory")
	t.Setenv("TELEGRAM_ENABLED", "false")
	t.Setenv("DISCORD_WEBHOOK_URL", "")
	t.Setenv("WEBHOOK_URL", "")
}

func TestLeaguesCommand(t *testing.T) {
	out, err := executeCmd(t, "leagues")
	require.NoError(t, err)
	require.Contains(t, out, "eng.1")
	require.Contains(t, out, "Premier League")
}

func TestAddAndTeamsCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	setTestEnv(t, path)

	out, err := executeCmd(t, "add", "Tottenham", "Hotspur", "--espn-id", "367", "--emoji", "🐓", "-l", "eng.1")
	require.NoError(t, err)
	require.Contains(t, out, "Added Tottenham Hotspur")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "espn_id: \"367\"")

	out, err = executeCmd(t, "teams")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "tottenham-hotspur")
	require.Contains(t, lines[1], "367")

	_, err = executeCmd(t, "add", "Tottenham Hotspur")
	require.Error(t, err)
}

func TestTeamsCommand_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teams: []\n"), 0o644))
	setTestEnv(t, path)

	out, err := executeCmd(t, "teams")
	require.NoError(t, err)
	require.Contains(t, out, "No teams tracked")
}

func TestMigrateArgs(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	require.Equal(t, 1, steps)

	_, err = parseSteps([]string{"0"})
	require.Error(t, err)

	version, err := parseVersion("1760745600")
	require.NoError(t, err)
	require.Equal(t, 1760745600, version)

	_, err = parseVersion("-1")
	require.Error(t, err)

	target, err := parseTarget("3")
	require.NoError(t, err)
	require.Equal(t, uint(3), target)
}
