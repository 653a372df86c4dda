// Package snapshot reads exported task sets from YAML or JSON files so
// reports can be produced without a database.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

// localLayouts carry no zone and are read in the caller's location.
var localLayouts = []string{
	"2006-01-02 15:04",
	time.DateOnly,
}

type userDTO struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	Role  string `yaml:"role"`
	Email string `yaml:"email"`
}

type activityDTO struct {
	ID       string  `yaml:"id"`
	Type     string  `yaml:"type"`
	Activity string  `yaml:"activity"`
	Date     string  `yaml:"date"`
	By       userDTO `yaml:"by"`
}

type subTaskDTO struct {
	ID    string    `yaml:"id"`
	Title string    `yaml:"title"`
	Date  string    `yaml:"date"`
	Tag   string    `yaml:"tag"`
	Stage string    `yaml:"stage"`
	Team  []userDTO `yaml:"team"`
}

type taskDTO struct {
	ID         string         `yaml:"id"`
	Title      string         `yaml:"title"`
	Date       string         `yaml:"date"`
	Priority   string         `yaml:"priority"`
	Stage      string         `yaml:"stage"`
	Team       []userDTO      `yaml:"team"`
	Activities *[]activityDTO `yaml:"activities"`
	SubTasks   []subTaskDTO   `yaml:"subTasks"`
	Assets     []string       `yaml:"assets"`
	IsTrashed  bool           `yaml:"isTrashed"`
}

type document struct {
	Tasks []taskDTO `yaml:"tasks"`
}

// Load reads the snapshot at path. JSON files are accepted as well since
// JSON documents are valid YAML.
func Load(path string, loc *time.Location) ([]models.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open snapshot '%s': %w", path, err)
	}
	defer f.Close()

	tasks, err := Decode(f, loc)
	if err != nil {
		return nil, fmt.Errorf("could not load snapshot '%s': %w", path, err)
	}
	return tasks, nil
}

// Decode parses a snapshot document and validates it. Dates without a
// zone are read in loc, or UTC when loc is nil.
func Decode(r io.Reader, loc *time.Location) ([]models.Task, error) {
	if loc == nil {
		loc = time.UTC
	}

	var doc document
	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	tasks := make([]models.Task, len(doc.Tasks))
	for i := range doc.Tasks {
		task, err := doc.Tasks[i].toModel(i, loc)
		if err != nil {
			return nil, err
		}
		tasks[i] = task
	}

	err = tracking.Validate(tasks)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (d *taskDTO) toModel(index int, loc *time.Location) (models.Task, error) {
	fail := func(field, reason string) error {
		return &tracking.ValidationError{TaskIndex: index, TaskID: d.ID, Field: field, Reason: reason}
	}

	date, err := parseDate(d.Date, loc)
	if err != nil {
		return models.Task{}, fail("date", err.Error())
	}
	if d.Activities == nil {
		return models.Task{}, fail("activities", "missing")
	}

	task := models.Task{
		ID:         d.ID,
		Title:      d.Title,
		Date:       date,
		Priority:   models.Priority(d.Priority),
		Stage:      models.Stage(d.Stage),
		Team:       userRefs(d.Team),
		Activities: make([]models.Activity, len(*d.Activities)),
		Assets:     d.Assets,
		IsTrashed:  d.IsTrashed,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNormal
	}
	if task.Stage == "" {
		task.Stage = models.StageTodo
	}

	for j, a := range *d.Activities {
		ts, err := parseDate(a.Date, loc)
		if err != nil {
			return models.Task{}, fail(fmt.Sprintf("activities[%d].date", j), err.Error())
		}
		task.Activities[j] = models.Activity{
			ID:        a.ID,
			Type:      models.ActivityType(a.Type),
			Text:      a.Activity,
			Timestamp: ts,
			Actor:     models.UserRef(a.By),
		}
	}

	for j, s := range d.SubTasks {
		date, err := parseDate(s.Date, loc)
		if err != nil {
			return models.Task{}, fail(fmt.Sprintf("subTasks[%d].date", j), err.Error())
		}
		stage := models.Stage(s.Stage)
		if stage == "" {
			stage = models.StageTodo
		}
		task.SubTasks = append(task.SubTasks, models.SubTask{
			ID:    s.ID,
			Title: s.Title,
			Date:  date,
			Tag:   s.Tag,
			Stage: stage,
			Team:  userRefs(s.Team),
		})
	}
	return task, nil
}

func userRefs(users []userDTO) []models.UserRef {
	refs := make([]models.UserRef, len(users))
	for i, u := range users {
		refs[i] = models.UserRef(u)
	}
	return refs
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		t, err = time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
