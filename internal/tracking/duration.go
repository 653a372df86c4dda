package tracking

import (
	"fmt"
	"time"

	"github.com/adanyl0v/taskboard/internal/models"
)

// Interval is a closed started/completed pair.
type Interval struct {
	Start models.Activity
	End   models.Activity
}

// Duration returns the interval length, clamped to zero when the completed
// event predates its start.
func (i Interval) Duration() time.Duration {
	d := i.End.Timestamp.Sub(i.Start.Timestamp)
	if d < 0 {
		return 0
	}
	return d
}

// Intervals pairs started and completed activities in the given order.
// An empty actor matches every activity.
func Intervals(activities []models.Activity, actor string) []Interval {
	var (
		intervals []Interval
		open      *models.Activity
	)
	for i := range activities {
		a := &activities[i]
		if actor != "" && a.Actor.ID != actor {
			continue
		}

		switch a.Type {
		case models.ActivityStarted:
			open = a
		case models.ActivityCompleted:
			if open == nil {
				continue
			}
			intervals = append(intervals, Interval{Start: *open, End: *a})
			open = nil
		case models.ActivityAssigned,
			models.ActivityUpdated,
			models.ActivityInProgress,
			models.ActivityBug,
			models.ActivityCommented,
			models.ActivitySubTaskAdded,
			models.ActivitySubTaskUpdated:
		}
	}
	return intervals
}

// Duration sums the closed intervals of activities attributable to actor.
func Duration(activities []models.Activity, actor string) time.Duration {
	var total time.Duration
	for _, in := range Intervals(activities, actor) {
		total += in.Duration()
	}
	return total
}

// FormatDuration renders d as "{hours}h {minutes}m", truncating seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
