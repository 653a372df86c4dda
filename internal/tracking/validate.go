package tracking

import (
	"errors"
	"fmt"

	"github.com/adanyl0v/taskboard/internal/models"
)

// ErrMalformedInput is wrapped by every ValidationError.
var ErrMalformedInput = errors.New("malformed input")

// ValidationError locates the first malformed field of a task set.
type ValidationError struct {
	TaskIndex int
	TaskID    string
	Field     string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("task %d (%s): %s: %s", e.TaskIndex, e.TaskID, e.Field, e.Reason)
	}
	return fmt.Sprintf("task %d: %s: %s", e.TaskIndex, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformedInput
}

// Validate fails on the first task whose dates or activity types would
// make duration arithmetic meaningless.
func Validate(tasks []models.Task) error {
	for i := range tasks {
		task := &tasks[i]
		if task.Date.IsZero() {
			return &ValidationError{TaskIndex: i, TaskID: task.ID, Field: "date", Reason: "missing"}
		}
		for j, a := range task.Activities {
			field := fmt.Sprintf("activities[%d]", j)
			if !a.Type.Valid() {
				return &ValidationError{
					TaskIndex: i,
					TaskID:    task.ID,
					Field:     field + ".type",
					Reason:    fmt.Sprintf("unknown activity type %q", a.Type),
				}
			}
			if a.Timestamp.IsZero() {
				return &ValidationError{TaskIndex: i, TaskID: task.ID, Field: field + ".timestamp", Reason: "missing"}
			}
		}
	}
	return nil
}
