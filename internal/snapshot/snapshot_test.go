package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

const sampleYAML = `
tasks:
  - id: t1
    title: Landing page
    date: 2024-03-03T09:00:00Z
    priority: high
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
      - type: commented
        activity: looks good
        date: 2024-03-04T10:00:00Z
        by: {id: u2, name: Bob}
      - type: completed
        date: 2024-03-04T11:30:00Z
        by: {id: u1, name: Alice}
    subTasks:
      - id: s1
        title: Hero image
        date: "2024-03-05"
        tag: design
        team:
          - id: u2
            name: Bob
  - id: t2
    title: Empty
    date: "2024-03-06 12:00"
    activities: []
`

func TestDecodeYAML(t *testing.T) {
	tasks, err := Decode(strings.NewReader(sampleYAML), time.UTC)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	first := tasks[0]
	assert.Equal(t, models.PriorityHigh, first.Priority)
	assert.Equal(t, models.StageInProgress, first.Stage)
	require.Len(t, first.Activities, 3)
	assert.Equal(t, models.ActivityStarted, first.Activities[0].Type)
	assert.Equal(t, "Alice", first.Activities[0].Actor.Name)
	require.Len(t, first.SubTasks, 1)
	assert.Equal(t, models.StageTodo, first.SubTasks[0].Stage)

	assert.Equal(t, 150*time.Minute, tracking.Duration(first.Activities, ""))
	assert.Equal(t, time.Duration(0), tracking.Duration(first.Activities, "u2"))

	second := tasks[1]
	assert.Equal(t, models.PriorityNormal, second.Priority)
	assert.Equal(t, models.StageTodo, second.Stage)
	assert.Empty(t, second.Activities)
	assert.Equal(t, "No team", tracking.ApplicantLabel(second.Team, ""))
}

func TestDecodeJSON(t *testing.T) {
	const doc = `{"tasks": [{"id": "t1", "title": "API", "date": "2024-03-03T09:00:00+02:00",
  "activities": [
    {"type": "started", "date": "2024-03-03T09:00:00+02:00", "by": {"id": "u1"}},
    {"type": "completed", "date": "2024-03-03T10:15:00+02:00", "by": {"id": "u1"}}
  ]}]}`

	tasks, err := Decode(strings.NewReader(doc), time.UTC)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 75*time.Minute, tracking.Duration(tasks[0].Activities, "u1"))
}

func TestDecodeEmpty(t *testing.T) {
	tasks, err := Decode(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "missing activities",
			doc:   "tasks:\n  - id: t1\n    date: 2024-03-03\n",
			field: "activities",
		},
		{
			name:  "missing task date",
			doc:   "tasks:\n  - id: t1\n    activities: []\n",
			field: "date",
		},
		{
			name:  "invalid activity date",
			doc:   "tasks:\n  - id: t1\n    date: 2024-03-03\n    activities:\n      - type: started\n        date: yesterday\n",
			field: "activities[0].date",
		},
		{
			name:  "unknown activity type",
			doc:   "tasks:\n  - id: t1\n    date: 2024-03-03\n    activities:\n      - type: paused\n        date: 2024-03-03\n",
			field: "activities[0].type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), time.UTC)
			require.ErrorIs(t, err, tracking.ErrMalformedInput)

			var verr *tracking.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "t1", verr.TaskID)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	tasks, err := Load(path, time.UTC)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), time.UTC)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeZonelessDatesUseLocation(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	const doc = `
tasks:
  - id: t1
    date: "2024-01-07"
    activities:
      - type: started
        date: "2024-01-07 21:00"
      - type: completed
        date: 2024-01-08T03:00:00Z
`
	tasks, err := Decode(strings.NewReader(doc), newYork)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, time.Sunday, tasks[0].Date.Weekday())
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, newYork), tasks[0].Date)
	// 21:00 EST is 02:00 UTC, an hour before the RFC 3339 completion.
	assert.Equal(t, time.Hour, tracking.Duration(tasks[0].Activities, ""))

	summary := tracking.Aggregate(tasks, "")
	assert.Equal(t, 1, summary.CountsByWeekday[time.Sunday])
}
