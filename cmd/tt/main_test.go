package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tt/internal/task"
)

// runCLI executes a fresh command tree so flag state never leaks
// between invocations.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func setupDirs(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return t.TempDir()
}

func TestCLIAddAndList(t *testing.T) {
	dir := setupDirs(t)

	out, err := runCLI(t, "-t", dir, "buy", "milk")
	require.NoError(t, err)
	require.NotEmpty(t, strings.TrimSpace(out))

	out, err = runCLI(t, "-t", dir)
	require.NoError(t, err)
	require.Contains(t, out, "buy milk")
	require.Contains(t, out, "(0) ")

	openPath, _ := task.ListPaths(dir, "tasks")
	require.FileExists(t, openPath)
}

func TestCLIVerboseAddPrintsFullID(t *testing.T) {
	dir := setupDirs(t)

	out, err := runCLI(t, "-t", dir, "-v", "buy milk")
	require.NoError(t, err)
	require.Len(t, strings.TrimSpace(out), 40)
}

func TestCLIExplicitIDIsEchoedAndShownInFull(t *testing.T) {
	dir := setupDirs(t)

	out, err := runCLI(t, "-t", dir, "-a", "groceries", "buy milk")
	require.NoError(t, err)
	require.Equal(t, "groceries", strings.TrimSpace(out))

	out, err = runCLI(t, "-t", dir)
	require.NoError(t, err)
	require.Contains(t, out, "groceries - buy milk")
}

func TestCLIFinishMovesTaskToDoneList(t *testing.T) {
	dir := setupDirs(t)

	out, err := runCLI(t, "-t", dir, "-a", "abc123", "buy milk")
	require.NoError(t, err)

	out, err = runCLI(t, "-t", dir, "-f", "abc")
	require.NoError(t, err)
	require.Empty(t, strings.TrimSpace(out))

	out, err = runCLI(t, "-t", dir)
	require.NoError(t, err)
	require.NotContains(t, out, "buy milk")

	out, err = runCLI(t, "-t", dir, "--done")
	require.NoError(t, err)
	require.Contains(t, out, "buy milk")
}

func TestCLIFinishBlockedBySubTasks(t *testing.T) {
	dir := setupDirs(t)

	_, err := runCLI(t, "-t", dir, "-a", "abc123", "parent")
	require.NoError(t, err)
	_, err = runCLI(t, "-t", dir, "-s", "abc", "child")
	require.NoError(t, err)

	out, err := runCLI(t, "-t", dir, "-f", "abc")
	require.NoError(t, err)
	require.Contains(t, out, "it has open sub-tasks")

	// Nothing moved: both tasks still list as open.
	out, err = runCLI(t, "-t", dir)
	require.NoError(t, err)
	require.Contains(t, out, "parent")
	require.Contains(t, out, "child")

	out, err = runCLI(t, "-t", dir, "-f", "abc", "--force")
	require.NoError(t, err)
	out, err = runCLI(t, "-t", dir, "--done")
	require.NoError(t, err)
	require.Contains(t, out, "parent")
	require.Contains(t, out, "child")
}

func TestCLIUnknownPrefixError(t *testing.T) {
	dir := setupDirs(t)

	_, err := runCLI(t, "-t", dir, "-f", "zzz")
	require.Error(t, err)
	require.Contains(t, err.Error(), `the ID "zzz" does not match any task`)
}

func TestCLIRejectsNewlinesInText(t *testing.T) {
	dir := setupDirs(t)

	_, err := runCLI(t, "-t", dir, "line one\nline two")
	require.Error(t, err)
	require.Contains(t, err.Error(), "newline")
}

func TestCLIDeleteIfEmptyRemovesFile(t *testing.T) {
	dir := setupDirs(t)

	_, err := runCLI(t, "-t", dir, "-a", "abc123", "buy milk")
	require.NoError(t, err)
	_, err = runCLI(t, "-t", dir, "-d", "-r", "abc")
	require.NoError(t, err)

	openPath, _ := task.ListPaths(dir, "tasks")
	_, statErr := os.Stat(openPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestCLISeparateListFlag(t *testing.T) {
	dir := setupDirs(t)

	_, err := runCLI(t, "-t", dir, "-l", "work", "write report")
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(dir, "work"))
	out, err := runCLI(t, "-t", dir, "-l", "work")
	require.NoError(t, err)
	require.Contains(t, out, "write report")

	out, err = runCLI(t, "-t", dir)
	require.NoError(t, err)
	require.NotContains(t, out, "write report")
}

func TestCLIGrepFiltersListing(t *testing.T) {
	dir := setupDirs(t)

	_, err := runCLI(t, "-t", dir, "buy milk")
	require.NoError(t, err)
	_, err = runCLI(t, "-t", dir, "walk the dog")
	require.NoError(t, err)

	out, err := runCLI(t, "-t", dir, "-g", "MILK")
	require.NoError(t, err)
	require.Contains(t, out, "buy milk")
	require.NotContains(t, out, "walk the dog")
}
