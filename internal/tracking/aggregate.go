package tracking

import (
	"time"

	"github.com/adanyl0v/taskboard/internal/models"
)

// Weekdays lists weekdays in the order used by CountsByWeekday.
var Weekdays = [7]time.Weekday{
	time.Sunday,
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
}

// Summary is the aggregate of a task set.
type Summary struct {
	TotalDuration time.Duration
	TaskCount     int
	// CountsByWeekday is indexed by time.Weekday, Sunday first.
	CountsByWeekday [7]int
}

// Aggregate totals durations across tasks and buckets them by the weekday
// of Task.Date in whatever location the dates carry. Sub-tasks are not
// counted.
func Aggregate(tasks []models.Task, actor string) Summary {
	var s Summary
	for i := range tasks {
		s.TotalDuration += Duration(tasks[i].Activities, actor)
		s.CountsByWeekday[tasks[i].Date.Weekday()]++
	}
	s.TaskCount = len(tasks)
	return s
}
