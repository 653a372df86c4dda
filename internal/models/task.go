package models

import "time"

type Stage string

const (
	StageTodo       Stage = "todo"
	StageInProgress Stage = "in progress"
	StageCompleted  Stage = "completed"
)

func (s Stage) Valid() bool {
	switch s {
	case StageTodo, StageInProgress, StageCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

type Task struct {
	ID         string
	Title      string
	Date       time.Time
	Priority   Priority
	Stage      Stage
	Activities []Activity
	SubTasks   []SubTask
	Team       []UserRef
	Assets     []string
	IsTrashed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasMember reports whether the user with the given id is on the task team.
func (t *Task) HasMember(userID string) bool {
	return hasMember(t.Team, userID)
}

type SubTask struct {
	ID    string
	Title string
	Date  time.Time
	Team  []UserRef
	Tag   string
	Stage Stage
}

func (s *SubTask) HasMember(userID string) bool {
	return hasMember(s.Team, userID)
}

func hasMember(team []UserRef, userID string) bool {
	for _, u := range team {
		if u.ID == userID {
			return true
		}
	}
	return false
}
