package models

import "time"

type ActivityType string

const (
	ActivityAssigned       ActivityType = "assigned"
	ActivityUpdated        ActivityType = "updated"
	ActivityStarted        ActivityType = "started"
	ActivityInProgress     ActivityType = "in progress"
	ActivityBug            ActivityType = "bug"
	ActivityCompleted      ActivityType = "completed"
	ActivityCommented      ActivityType = "commented"
	ActivitySubTaskAdded   ActivityType = "subtask added"
	ActivitySubTaskUpdated ActivityType = "subtask updated"
)

var activityTypes = []ActivityType{
	ActivityAssigned,
	ActivityUpdated,
	ActivityStarted,
	ActivityInProgress,
	ActivityBug,
	ActivityCompleted,
	ActivityCommented,
	ActivitySubTaskAdded,
	ActivitySubTaskUpdated,
}

func (t ActivityType) Valid() bool {
	for _, v := range activityTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Activity struct {
	ID        string
	Type      ActivityType
	Text      string
	Timestamp time.Time
	Actor     UserRef
}
