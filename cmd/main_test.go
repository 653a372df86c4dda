package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/taskboard/internal/tracking"
)

const snapshotYAML = `
tasks:
  - id: t1
    title: Landing page
    date: 2024-03-03T23:30:00Z
    stage: in progress
    team:
      - id: u1
        name: Alice
      - id: u2
        name: Bob
    activities:
      - type: started
        activity: layout
        date: 2024-03-04T09:00:00Z
        by: {id: u1, name: Alice}
      - type: completed
        date: 2024-03-04T11:30:00Z
        by: {id: u1, name: Alice}
      - type: started
        date: 2024-03-04T12:00:00Z
        by: {id: u2, name: Bob}
      - type: completed
        date: 2024-03-04T12:45:00Z
        by: {id: u2, name: Bob}
  - id: t2
    title: Docs
    date: 2024-03-05T10:00:00Z
    activities: []
`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(zerolog.Nop())
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportText(t *testing.T) {
	path := writeSnapshot(t, snapshotYAML)

	out, err := executeCommand(t, "report", "--file", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Landing page")
	assert.Contains(t, out, "Alice, Bob")
	assert.Contains(t, out, "3h 15m")
	assert.Contains(t, out, "No team")
	assert.Contains(t, out, "Tasks: 2")
	assert.Contains(t, out, "Total Duration: 3h 15m")
	// 23:30 UTC on Sunday is Monday in Kyiv.
	assert.Contains(t, out, "Monday    1")
	assert.Contains(t, out, "Tuesday   1")
	assert.Contains(t, out, "Sunday    0")
}

func TestReportTextForUser(t *testing.T) {
	path := writeSnapshot(t, snapshotYAML)

	out, err := executeCommand(t, "report", "--file", path, "--user", "u2", "--timezone", "UTC")
	require.NoError(t, err)

	assert.Contains(t, out, "Total Duration: 0h 45m")
	assert.Contains(t, out, "Sunday    1")
	assert.NotContains(t, out, "Alice, Bob")
}

func TestReportCSV(t *testing.T) {
	path := writeSnapshot(t, snapshotYAML)

	out, err := executeCommand(t, "report", "--file", path, "--format", "csv", "--timezone", "UTC")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, tracking.Header(), records[0])
	assert.Equal(t, []string{"Alice, Bob", "layout", "started", "2024-03-04 09:00", "2h 30m", "Landing page", "in progress"}, records[1])
	assert.Equal(t, []string{"Alice, Bob", "-", "started", "2024-03-04 12:00", "0h 45m", "Landing page", "in progress"}, records[2])
	assert.Equal(t, []string{"Alice, Bob", tracking.TotalRowLabel, "-", "-", "3h 15m", "Landing page", "in progress"}, records[3])
}

func TestReportDateOnlyKeepsWeekday(t *testing.T) {
	path := writeSnapshot(t, "tasks:\n  - id: t1\n    title: Sunday task\n    date: \"2024-01-07\"\n    activities: []\n")

	out, err := executeCommand(t, "report", "--file", path, "--timezone", "America/New_York")
	require.NoError(t, err)

	assert.Contains(t, out, "Sunday    1")
	assert.Contains(t, out, "Saturday  0")
}

func TestReportErrors(t *testing.T) {
	path := writeSnapshot(t, snapshotYAML)

	_, err := executeCommand(t, "report", "--file", path, "--format", "pdf")
	assert.ErrorIs(t, err, errUnknownFormat)

	_, err = executeCommand(t, "report", "--file", path, "--timezone", "Mars/Base")
	assert.Error(t, err)

	malformed := writeSnapshot(t, "tasks:\n  - id: t1\n    date: 2024-03-03\n")
	_, err = executeCommand(t, "report", "--file", malformed)
	assert.ErrorIs(t, err, tracking.ErrMalformedInput)
}

func TestGrantAdminRequiresEmail(t *testing.T) {
	_, err := executeCommand(t, "grant-admin")
	assert.ErrorContains(t, err, `required flag(s) "email" not set`)
}
