package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskboard/internal/tracking"
)

type reportServiceImpl struct {
	logger zerolog.Logger
	tasks  TaskService
	loc    *time.Location
}

func NewReportService(
	logger zerolog.Logger,
	taskService TaskService,
	loc *time.Location,
) ReportService {
	return &reportServiceImpl{
		logger: logger,
		tasks:  taskService,
		loc:    loc,
	}
}

func (s *reportServiceImpl) TaskReport(ctx context.Context, filter TaskFilter) (*Report, error) {
	tasks, err := s.tasks.GetTasks(ctx, filter)
	if err != nil {
		return nil, err
	}

	err = tracking.Validate(tasks)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("stored tasks failed validation")
		return nil, err
	}

	report := &Report{
		Tasks:   make([]TaskReportLine, len(tasks)),
		Summary: tracking.Aggregate(tasks, filter.UserID),
	}
	for i, task := range tasks {
		report.Tasks[i] = TaskReportLine{
			Task:      task,
			Applicant: tracking.ApplicantLabel(task.Team, filter.UserID),
			Duration:  tracking.Duration(task.Activities, filter.UserID),
		}
	}

	s.logger.Info().
		Str("user_id", filter.UserID).
		Int("tasks", report.Summary.TaskCount).
		Dur("total", report.Summary.TotalDuration).
		Msg("built task report")
	return report, nil
}

func (s *reportServiceImpl) ExportRows(ctx context.Context, filter TaskFilter) ([]tracking.Row, error) {
	tasks, err := s.tasks.GetTasks(ctx, filter)
	if err != nil {
		return nil, err
	}

	err = tracking.Validate(tasks)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("stored tasks failed validation")
		return nil, err
	}

	rows := tracking.Rows(tasks, filter.UserID, s.loc)
	s.logger.Info().
		Str("user_id", filter.UserID).
		Int("tasks", len(tasks)).
		Int("rows", len(rows)).
		Msg("built export rows")
	return rows, nil
}
