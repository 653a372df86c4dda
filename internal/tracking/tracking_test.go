package tracking

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/taskboard/internal/models"
)

var t0 = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func act(typ models.ActivityType, offset time.Duration, actor string) models.Activity {
	return models.Activity{
		Type:      typ,
		Timestamp: t0.Add(offset),
		Actor:     models.UserRef{ID: actor, Name: "name-" + actor},
	}
}

func TestDuration(t *testing.T) {
	t.Run("empty list is zero for any filter", func(t *testing.T) {
		assert.Zero(t, Duration(nil, ""))
		assert.Zero(t, Duration([]models.Activity{}, "u1"))
	})

	t.Run("single closed interval", func(t *testing.T) {
		activities := []models.Activity{
			act(models.ActivityStarted, 0, "u1"),
			act(models.ActivityCompleted, time.Hour, "u1"),
		}
		d := Duration(activities, "")
		assert.Equal(t, int64(3_600_000), d.Milliseconds())
		assert.Equal(t, "1h 0m", FormatDuration(d))
	})

	t.Run("repeated started keeps the last start", func(t *testing.T) {
		activities := []models.Activity{
			act(models.ActivityStarted, 0, "u1"),
			act(models.ActivityStarted, 10*time.Minute, "u1"),
			act(models.ActivityCompleted, 30*time.Minute, "u1"),
		}
		assert.Equal(t, int64(1_200_000), Duration(activities, "").Milliseconds())
	})

	t.Run("unmatched started contributes nothing", func(t *testing.T) {
		activities := []models.Activity{
			act(models.ActivityStarted, 0, "u1"),
			act(models.ActivityCompleted, time.Hour, "u1"),
			act(models.ActivityStarted, 2*time.Hour, "u1"),
		}
		assert.Equal(t, time.Hour, Duration(activities, ""))
	})

	t.Run("completed without start is ignored", func(t *testing.T) {
		activities := []models.Activity{
			act(models.ActivityCompleted, time.Hour, "u1"),
			act(models.ActivityStarted, 2*time.Hour, "u1"),
			act(models.ActivityCompleted, 3*time.Hour, "u1"),
		}
		assert.Equal(t, time.Hour, Duration(activities, ""))
	})

	t.Run("completed before start clamps to zero", func(t *testing.T) {
		activities := []models.Activity{
			act(models.ActivityStarted, time.Hour, "u1"),
			act(models.ActivityCompleted, 0, "u1"),
			act(models.ActivityStarted, 2*time.Hour, "u1"),
			act(models.ActivityCompleted, 2*time.Hour+15*time.Minute, "u1"),
		}
		assert.Equal(t, 15*time.Minute, Duration(activities, ""))
	})

	t.Run("other types do not affect duration", func(t *testing.T) {
		activities := []models.Activity{
			act(models.ActivityAssigned, 0, "u1"),
			act(models.ActivityStarted, time.Minute, "u1"),
			act(models.ActivityCommented, 2*time.Minute, "u1"),
			act(models.ActivityInProgress, 3*time.Minute, "u1"),
			act(models.ActivityBug, 4*time.Minute, "u1"),
			act(models.ActivitySubTaskAdded, 5*time.Minute, "u1"),
			act(models.ActivityCompleted, 61*time.Minute, "u1"),
		}
		assert.Equal(t, time.Hour, Duration(activities, ""))
	})

	t.Run("idempotent", func(t *testing.T) {
		activities := []models.Activity{
			act(models.ActivityStarted, 0, "u1"),
			act(models.ActivityCompleted, 90*time.Minute, "u1"),
		}
		assert.Equal(t, Duration(activities, ""), Duration(activities, ""))
	})
}

func TestDuration_ActorFilter(t *testing.T) {
	mixed := []models.Activity{
		act(models.ActivityStarted, 0, "u1"),
		act(models.ActivityStarted, 5*time.Minute, "u2"),
		act(models.ActivityCompleted, 20*time.Minute, "u2"),
		act(models.ActivityCompleted, 60*time.Minute, "u1"),
	}

	var onlyU1 []models.Activity
	for _, a := range mixed {
		if a.Actor.ID == "u1" {
			onlyU1 = append(onlyU1, a)
		}
	}

	assert.Equal(t, Duration(onlyU1, ""), Duration(mixed, "u1"))
	assert.Equal(t, time.Hour, Duration(mixed, "u1"))
	assert.Equal(t, 15*time.Minute, Duration(mixed, "u2"))
	assert.Zero(t, Duration(mixed, "u3"))

	// Unfiltered, u2's start overwrites u1's and u2's completion closes it.
	assert.Equal(t, 15*time.Minute, Duration(mixed, ""))
}

func TestDuration_NeverNegative(t *testing.T) {
	types := []models.ActivityType{models.ActivityStarted, models.ActivityCompleted, models.ActivityCommented}
	for seed := 0; seed < 200; seed++ {
		var activities []models.Activity
		for i := 0; i < 8; i++ {
			typ := types[(seed*7+i*3)%len(types)]
			offset := time.Duration((seed*31+i*17)%120-60) * time.Minute
			activities = append(activities, act(typ, offset, "u1"))
		}
		assert.GreaterOrEqual(t, Duration(activities, ""), time.Duration(0))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0h 0m"},
		{59 * time.Second, "0h 0m"},
		{time.Minute, "0h 1m"},
		{time.Hour + 59*time.Minute + 59*time.Second, "1h 59m"},
		{26*time.Hour + 5*time.Minute, "26h 5m"},
		{-time.Hour, "0h 0m"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestAggregate(t *testing.T) {
	t.Run("counts every task", func(t *testing.T) {
		tasks := []models.Task{
			{ID: "a", Date: t0},
			{ID: "b", Date: t0, Activities: []models.Activity{
				act(models.ActivityStarted, 0, "u1"),
				act(models.ActivityCompleted, time.Hour, "u1"),
			}},
			{ID: "c", Date: t0, Activities: []models.Activity{
				act(models.ActivityStarted, 0, "u2"),
				act(models.ActivityCompleted, 30*time.Minute, "u2"),
			}},
		}

		all := Aggregate(tasks, "")
		assert.Equal(t, 3, all.TaskCount)
		assert.Equal(t, 90*time.Minute, all.TotalDuration)

		u1 := Aggregate(tasks, "u1")
		assert.Equal(t, 3, u1.TaskCount)
		assert.Equal(t, time.Hour, u1.TotalDuration)
	})

	t.Run("one task per weekday", func(t *testing.T) {
		var tasks []models.Task
		for i := 0; i < 7; i++ {
			tasks = append(tasks, models.Task{Date: t0.AddDate(0, 0, i)})
		}

		s := Aggregate(tasks, "")
		sum := 0
		for _, wd := range Weekdays {
			assert.Equal(t, 1, s.CountsByWeekday[wd], wd.String())
			sum += s.CountsByWeekday[wd]
		}
		assert.Equal(t, 7, sum)
	})

	t.Run("single weekday bucket", func(t *testing.T) {
		s := Aggregate([]models.Task{{Date: t0}}, "")
		for _, wd := range Weekdays {
			want := 0
			if wd == time.Monday {
				want = 1
			}
			assert.Equal(t, want, s.CountsByWeekday[wd], wd.String())
		}
	})

	t.Run("sub-tasks are not counted", func(t *testing.T) {
		s := Aggregate([]models.Task{{
			Date:     t0,
			SubTasks: []models.SubTask{{Date: t0.AddDate(0, 0, 1)}},
		}}, "")
		assert.Equal(t, 1, s.TaskCount)
		assert.Zero(t, s.CountsByWeekday[time.Tuesday])
	})

	t.Run("empty", func(t *testing.T) {
		s := Aggregate(nil, "u1")
		assert.Zero(t, s.TaskCount)
		assert.Zero(t, s.TotalDuration)
	})
}

func TestApplicantLabel(t *testing.T) {
	team := []models.UserRef{
		{ID: "u1", Name: "Alice"},
		{ID: "u2", Name: "Bob"},
	}

	assert.Equal(t, NoTeamLabel, ApplicantLabel(nil, ""))
	assert.Equal(t, NoTeamLabel, ApplicantLabel(nil, "u1"))
	assert.Equal(t, "Alice, Bob", ApplicantLabel(team, ""))
	assert.Equal(t, "Bob", ApplicantLabel(team, "u2"))
	assert.Equal(t, "Alice", ApplicantLabel(team, "u9"))
}

func TestRows(t *testing.T) {
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)

	start := act(models.ActivityStarted, 0, "u1")
	start.Text = "Order #12"
	tasks := []models.Task{
		{
			ID:    "t1",
			Title: "Website",
			Stage: models.StageInProgress,
			Date:  t0,
			Team:  []models.UserRef{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}},
			Activities: []models.Activity{
				start,
				act(models.ActivityCompleted, 90*time.Minute, "u1"),
				act(models.ActivityStarted, 2*time.Hour, "u2"),
				act(models.ActivityCompleted, 2*time.Hour+30*time.Minute, "u2"),
			},
		},
		{
			ID:    "t2",
			Title: "Idle",
			Stage: models.StageTodo,
			Date:  t0,
			Activities: []models.Activity{
				act(models.ActivityStarted, 0, "u1"),
			},
		},
	}

	want := []Row{
		{
			TaskID: "t1", Applicant: "Alice, Bob", Order: "Order #12", Type: "started",
			Timestamp: "2024-03-04 11:00", Duration: "1h 30m", DurationMs: 5_400_000,
			Project: "Website", Stage: "in progress",
		},
		{
			TaskID: "t1", Applicant: "Alice, Bob", Order: "-", Type: "started",
			Timestamp: "2024-03-04 13:00", Duration: "0h 30m", DurationMs: 1_800_000,
			Project: "Website", Stage: "in progress",
		},
		{
			TaskID: "t1", Applicant: "Alice, Bob", Order: TotalRowLabel, Type: "-",
			Timestamp: "-", Duration: "2h 0m", DurationMs: 7_200_000,
			Project: "Website", Stage: "in progress",
		},
	}

	got := Rows(tasks, "", kyiv)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}

	filtered := Rows(tasks, "u2", nil)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Bob", filtered[0].Applicant)
	assert.Equal(t, "2024-03-04 11:00", filtered[0].Timestamp)
	assert.Equal(t, "0h 30m", filtered[1].Duration)
	assert.Len(t, filtered[0].Record(), len(Header()))
}

func TestWriteCSV(t *testing.T) {
	tasks := []models.Task{{
		ID:    "t1",
		Title: "Report, final",
		Date:  t0,
		Stage: models.StageCompleted,
		Team:  []models.UserRef{{ID: "u1", Name: "Alice"}},
		Activities: []models.Activity{
			act(models.ActivityStarted, 0, "u1"),
			act(models.ActivityCompleted, 45*time.Minute, "u1"),
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Rows(tasks, "", time.UTC)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header(), records[0])
	assert.Equal(t, []string{"Alice", "-", "started", "2024-03-04 09:00", "0h 45m", "Report, final", "completed"}, records[1])
	assert.Equal(t, TotalRowLabel, records[2][1])

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Applicant,Order,Activity,Timestamp,Duration,Project,Stage\n", buf.String())
}

func TestValidate(t *testing.T) {
	valid := models.Task{
		ID:   "t1",
		Date: t0,
		Activities: []models.Activity{
			act(models.ActivityStarted, 0, "u1"),
		},
	}
	require.NoError(t, Validate([]models.Task{valid}))
	require.NoError(t, Validate(nil))

	tests := []struct {
		name  string
		task  models.Task
		field string
	}{
		{
			name:  "missing date",
			task:  models.Task{ID: "t2"},
			field: "date",
		},
		{
			name: "missing timestamp",
			task: models.Task{ID: "t2", Date: t0, Activities: []models.Activity{
				{Type: models.ActivityStarted},
			}},
			field: "activities[0].timestamp",
		},
		{
			name: "unknown type",
			task: models.Task{ID: "t2", Date: t0, Activities: []models.Activity{
				act(models.ActivityStarted, 0, "u1"),
				act("paused", time.Minute, "u1"),
			}},
			field: "activities[1].type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]models.Task{valid, tt.task})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, 1, vErr.TaskIndex)
			assert.Equal(t, "t2", vErr.TaskID)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
