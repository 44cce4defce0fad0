package cmd

import (
	"bytes"
	"io"
	"testing"

	"github.com/inovacc/juli/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--data-dir", dataDir, "--backend", "bolt", "--log-level", "error"))

	err := rootCmd.Execute()

	return out.String(), err
}

func TestWorkspaceCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := runCommand(t, dir, "workspace", "add", "Mail")
	require.NoError(t, err)
	assert.Contains(t, out, "Workspace 'Mail' created")
	assert.Contains(t, out, "This workspace is now active.")

	out, err = runCommand(t, dir, "workspace", "add", "Chat")
	require.NoError(t, err)
	assert.Contains(t, out, "juli workspace use")

	out, err = runCommand(t, dir, "workspace", "use", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Workspace 'Chat' is now active")

	out, err = runCommand(t, dir, "workspace", "next")
	require.NoError(t, err)
	assert.Contains(t, out, "Mail")

	out, err = runCommand(t, dir, "workspace", "pref", "Mail", "muted", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "Preference 'muted' updated")

	out, err = runCommand(t, dir, "workspace", "pref", "Mail", "muted")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = runCommand(t, dir, "workspace", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Workspaces (2)")
	assert.Contains(t, out, "Chat (active)")

	out, err = runCommand(t, dir, "workspace", "remove", "Mail", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Workspace 'Mail' removed")

	_, err = runCommand(t, dir, "workspace", "use", "Mail")
	require.ErrorIs(t, err, workspace.ErrWorkspaceNotFound)
}

func TestWorkspaceNeighborsStartFromActive(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := runCommand(t, dir, "workspace", "add", name)
		require.NoError(t, err)
	}

	_, err := runCommand(t, dir, "workspace", "use", "Beta")
	require.NoError(t, err)

	out, err := runCommand(t, dir, "workspace", "next")
	require.NoError(t, err)
	assert.Contains(t, out, "Gamma")
	assert.NotContains(t, out, "Beta")

	out, err = runCommand(t, dir, "workspace", "prev")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.NotContains(t, out, "Gamma")

	out, err = runCommand(t, dir, "workspace", "next", "--activate")
	require.NoError(t, err)
	assert.Contains(t, out, "Gamma (active)")
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()

	out, err := runCommand(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
	assert.Contains(t, out, "bolt")
	assert.Contains(t, out, "ID:   juli")
}
