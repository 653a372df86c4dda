// Package calendar mirrors task dates into a Google Calendar as all-day
// events, one event per task.
package calendar

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

// taskIDProperty is the private extended property linking an event to
// its task.
const taskIDProperty = "task_id"

// NewService authenticates with a service account or authorized user
// credentials file.
func NewService(ctx context.Context, credentialsFile string) (*calendar.Service, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %s: %w", credentialsFile, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials file: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}
	return srv, nil
}

type Result struct {
	Created   int
	Updated   int
	Unchanged int
}

type Publisher struct {
	logger      zerolog.Logger
	srv         *calendar.Service
	calendarID  string
	concurrency int
	loc         *time.Location
}

// NewPublisher renders event dates in loc. concurrency bounds the number
// of tasks synced at once.
func NewPublisher(
	logger zerolog.Logger,
	srv *calendar.Service,
	calendarID string,
	concurrency int,
	loc *time.Location,
) *Publisher {
	if concurrency < 1 {
		concurrency = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Publisher{
		logger:      logger,
		srv:         srv,
		calendarID:  calendarID,
		concurrency: concurrency,
		loc:         loc,
	}
}

// Publish creates or patches one event per task. It stops at the first
// failed task and returns what was synced up to then.
func (p *Publisher) Publish(ctx context.Context, tasks []models.Task) (Result, error) {
	var created, updated, unchanged atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range tasks {
		task := &tasks[i]
		g.Go(func() error {
			outcome, err := p.publishTask(gctx, task)
			if err != nil {
				p.logger.Error().
					Err(err).
					Str("task_id", task.ID).
					Msg("failed to publish task")
				return fmt.Errorf("task %s: %w", task.ID, err)
			}

			switch outcome {
			case outcomeCreated:
				created.Add(1)
			case outcomeUpdated:
				updated.Add(1)
			case outcomeUnchanged:
				unchanged.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	result := Result{
		Created:   int(created.Load()),
		Updated:   int(updated.Load()),
		Unchanged: int(unchanged.Load()),
	}
	p.logger.Info().
		Str("calendar_id", p.calendarID).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Msg("published tasks")
	return result, err
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeUnchanged
)

func (p *Publisher) publishTask(ctx context.Context, task *models.Task) (outcome, error) {
	target := p.eventFor(task)

	existing, err := p.findEvent(ctx, task.ID)
	if err != nil {
		return 0, fmt.Errorf("error searching for event: %w", err)
	}

	if existing == nil {
		_, err = p.srv.Events.Insert(p.calendarID, target).Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("failed to insert event: %w", err)
		}
		p.logger.Debug().
			Str("task_id", task.ID).
			Msg("created event")
		return outcomeCreated, nil
	}

	patch := eventPatch(existing, target)
	if patch == nil {
		return outcomeUnchanged, nil
	}
	_, err = p.srv.Events.Patch(p.calendarID, existing.Id, patch).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to patch event %s: %w", existing.Id, err)
	}
	p.logger.Debug().
		Str("task_id", task.ID).
		Str("event_id", existing.Id).
		Msg("patched event")
	return outcomeUpdated, nil
}

func (p *Publisher) findEvent(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := p.srv.Events.List(p.calendarID).
		PrivateExtendedProperty(taskIDProperty + "=" + taskID).
		ShowDeleted(false).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// eventFor builds an all-day event on the task date.
func (p *Publisher) eventFor(task *models.Task) *calendar.Event {
	day := task.Date.In(p.loc)
	start := day.Format(time.DateOnly)
	end := day.AddDate(0, 0, 1).Format(time.DateOnly)

	return &calendar.Event{
		Summary:     task.Title,
		Description: describe(task),
		Start:       &calendar.EventDateTime{Date: start},
		End:         &calendar.EventDateTime{Date: end},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{taskIDProperty: task.ID},
		},
	}
}

func describe(task *models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stage: %s\n", task.Stage)
	fmt.Fprintf(&b, "Priority: %s\n", task.Priority)
	fmt.Fprintf(&b, "Team: %s\n", tracking.ApplicantLabel(task.Team, ""))
	fmt.Fprintf(&b, "Tracked: %s", tracking.FormatDuration(tracking.Duration(task.Activities, "")))
	return b.String()
}

// eventPatch returns the fields of target that differ from existing, or
// nil when nothing changed.
func eventPatch(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	changed := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		changed = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		changed = true
	}
	if dateOf(existing.Start) != target.Start.Date || dateOf(existing.End) != target.End.Date {
		patch.Start = target.Start
		patch.End = target.End
		changed = true
	}

	if !changed {
		return nil
	}
	return patch
}

func dateOf(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.Date
}
