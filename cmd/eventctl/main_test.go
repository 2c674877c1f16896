package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"eventctl"}, args...))
	return out.String(), err
}

func TestEventctlLifecycle(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", filepath.Join(dir, "calendar.db"))
	t.Setenv("ENABLE_CACHE", "false")
	t.Setenv("PURGE_CODE", "1234")

	out, err := runCLI(t, "init", "--seed")
	require.NoError(t, err)
	assert.Contains(t, out, "sample event added")

	out, err = runCLI(t, "add", "--title", "Mid review", "--start", "2024-11-15", "--color", "파란색")
	require.NoError(t, err)
	assert.Contains(t, out, "created event 2")

	_, err = runCLI(t, "add", "--title", "Backwards", "--start", "2024-11-15", "--end", "2024-11-01")
	require.Error(t, err)

	out, err = runCLI(t, "list", "--keyword", "review")
	require.NoError(t, err)
	assert.Contains(t, out, "Mid review")
	assert.Contains(t, out, "blue")
	assert.NotContains(t, out, "Sample event")

	exportPath := filepath.Join(dir, "events.ics")
	_, err = runCLI(t, "export", "--format", "ics", "--out", exportPath)
	require.NoError(t, err)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCALENDAR"))

	_, err = runCLI(t, "purge", "--code", "0000")
	require.Error(t, err)
	out, err = runCLI(t, "purge", "--code", "1234")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 2 event(s)")

	out, err = runCLI(t, "import", "--dry-run", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 2 row(s) valid")

	out, err = runCLI(t, "import", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 of 2 row(s)")

	_, err = runCLI(t, "delete", "3", "99")
	require.NoError(t, err)
	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Sample event")
	assert.Contains(t, out, "Mid review")
}
