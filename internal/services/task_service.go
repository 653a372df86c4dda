package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

const (
	duplicateTitleSuffix = " - Duplicate"
	dashboardLastTasks   = 10
	dashboardUsers       = 10
)

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	store  taskStore
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	loc *time.Location,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
		store:  taskStore{loc: loc},
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	priority, stage, err := normalizeTaskEnums(params.Priority, params.Stage)
	if err != nil {
		return nil, err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ID:        taskUUID.String(),
		Title:     params.Title,
		Date:      params.Date,
		Priority:  priority,
		Stage:     stage,
		Team:      refs(dedupe(params.TeamIDs)),
		Assets:    params.Assets,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if task.Date.IsZero() {
		task.Date = now.In(s.store.loc)
	}

	text := assignmentNoticeText(len(task.Team), task.Priority, task.Date)

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = s.store.insertTask(ctx, tx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	err = s.store.replaceTeam(ctx, tx, "task_team", "task_id", task.ID, teamIDs(task.Team))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to insert task team")
		return nil, err
	}

	err = s.recordActivity(ctx, tx, task.ID, models.ActivityAssigned, text, params.CreatorID)
	if err != nil {
		return nil, err
	}

	err = insertNotice(ctx, tx, task.ID, text, models.NoticeTypeAlert, teamIDs(task.Team))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to insert notice")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Int("team", len(task.Team)).
		Msg("created task")
	return s.GetTask(ctx, task.ID)
}

func (s *taskServiceImpl) DuplicateTask(ctx context.Context, taskID string) (*models.Task, error) {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	source, err := s.store.selectTaskByID(ctx, tx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task to duplicate")
		return nil, err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ID:        taskUUID.String(),
		Title:     source.Title + duplicateTitleSuffix,
		Date:      source.Date,
		Priority:  source.Priority,
		Stage:     source.Stage,
		Team:      source.Team,
		Assets:    source.Assets,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.store.insertTask(ctx, tx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert duplicated task")
		return nil, err
	}

	err = s.store.replaceTeam(ctx, tx, "task_team", "task_id", task.ID, teamIDs(task.Team))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to insert task team")
		return nil, err
	}

	for _, sub := range source.SubTasks {
		subUUID, err := uuid.NewV7()
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to generate subtask uuid")
			return nil, err
		}
		sub.ID = subUUID.String()

		err = s.store.insertSubTask(ctx, tx, task.ID, &sub)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", task.ID).
				Msg("failed to copy subtask")
			return nil, err
		}
	}

	text := assignmentNoticeText(len(task.Team), task.Priority, task.Date)
	err = insertNotice(ctx, tx, task.ID, text, models.NoticeTypeAlert, teamIDs(task.Team))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to insert notice")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("source_task_id", source.ID).
		Str("task_id", task.ID).
		Int("subtasks", len(source.SubTasks)).
		Msg("duplicated task")
	return s.GetTask(ctx, task.ID)
}

func (s *taskServiceImpl) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.store.selectTaskByID(ctx, s.pgPool, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			s.logger.Error().
				Str("task_id", taskID).
				Msg("task not found")
			return nil, err
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Int("activities", len(task.Activities)).
		Int("subtasks", len(task.SubTasks)).
		Msg("selected task")
	return task, nil
}

func (s *taskServiceImpl) GetTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, ErrInvalidTaskStage
	}

	tasks, err := s.store.selectTasks(ctx, s.pgPool, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}

	if filter.UserID != "" {
		for i := range tasks {
			tasks[i].SubTasks = subTasksOf(tasks[i].SubTasks, filter.UserID)
		}
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("stage", string(filter.Stage)).
		Str("user_id", filter.UserID).
		Bool("trashed", filter.Trashed).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	priority, stage, err := normalizeTaskEnums(params.Priority, params.Stage)
	if err != nil {
		return nil, err
	}

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    date = $2,
    priority = $3,
    stage = $4,
    assets = $5,
    updated_at = $6
WHERE id = $7
`
	tag, err := tx.Exec(
		ctx,
		updateTaskQuery,
		params.Title,
		params.Date,
		string(priority),
		string(stage),
		nonNilStrings(params.Assets),
		time.Now(),
		params.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task")
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", params.ID).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}

	err = s.store.replaceTeam(ctx, tx, "task_team", "task_id", params.ID, params.TeamIDs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to replace task team")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", params.ID).
		Msg("updated task")
	return s.GetTask(ctx, params.ID)
}

func (s *taskServiceImpl) TrashTask(ctx context.Context, taskID string) error {
	const trashTaskQuery = `
UPDATE tasks
SET is_trashed = TRUE,
    updated_at = $1
WHERE id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		trashTaskQuery,
		time.Now(),
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to trash task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", taskID).
		Msg("trashed task")
	return nil
}

func (s *taskServiceImpl) DeleteRestoreTask(ctx context.Context, params DeleteRestoreParams) error {
	var (
		query string
		args  []any
		byID  bool
	)
	switch params.Action {
	case TrashActionDelete:
		query = `DELETE FROM tasks WHERE id = $1`
		args = []any{params.ID}
		byID = true
	case TrashActionDeleteAll:
		query = `DELETE FROM tasks WHERE is_trashed`
	case TrashActionRestore:
		query = `UPDATE tasks SET is_trashed = FALSE, updated_at = $2 WHERE id = $1`
		args = []any{params.ID, time.Now()}
		byID = true
	case TrashActionRestoreAll:
		query = `UPDATE tasks SET is_trashed = FALSE, updated_at = $1 WHERE is_trashed`
		args = []any{time.Now()}
	default:
		s.logger.Error().
			Str("action", params.Action).
			Msg("invalid trash action")
		return ErrInvalidTrashAction
	}

	tag, err := s.pgPool.Exec(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("action", params.Action).
			Str("task_id", params.ID).
			Msg("failed to apply trash action")
		return err
	}
	if byID && tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", params.ID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("action", params.Action).
		Str("task_id", params.ID).
		Int64("affected", tag.RowsAffected()).
		Msg("applied trash action")
	return nil
}

func (s *taskServiceImpl) PostActivity(ctx context.Context, params PostActivityParams) (*models.Activity, error) {
	if !params.Type.Valid() {
		return nil, ErrInvalidActivityType
	}

	activity, err := s.newActivity(params.Type, params.Text, params.ActorID)
	if err != nil {
		return nil, err
	}

	err = s.store.insertActivity(ctx, s.pgPool, params.TaskID, activity)
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Error().
				Str("task_id", params.TaskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to insert activity")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", params.TaskID).
		Str("activity_id", activity.ID).
		Str("type", string(activity.Type)).
		Msg("posted activity")
	return activity, nil
}

func (s *taskServiceImpl) UpdateActivity(ctx context.Context, params UpdateActivityParams) error {
	const updateActivityQuery = `
UPDATE activities
SET text = $1
WHERE id = $2 AND
      task_id = $3
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateActivityQuery,
		params.Text,
		params.ActivityID,
		params.TaskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("activity_id", params.ActivityID).
			Msg("failed to update activity")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", params.TaskID).
			Str("activity_id", params.ActivityID).
			Msg("activity not found")
		return ErrActivityNotFound
	}

	s.logger.Info().
		Str("task_id", params.TaskID).
		Str("activity_id", params.ActivityID).
		Msg("updated activity")
	return nil
}

func (s *taskServiceImpl) DeleteActivity(ctx context.Context, taskID, activityID string) error {
	const deleteActivityQuery = `
DELETE FROM activities
WHERE id = $1 AND
      task_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteActivityQuery,
		activityID,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("activity_id", activityID).
			Msg("failed to delete activity")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", taskID).
			Str("activity_id", activityID).
			Msg("activity not found")
		return ErrActivityNotFound
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("activity_id", activityID).
		Msg("deleted activity")
	return nil
}

func (s *taskServiceImpl) CreateSubTask(ctx context.Context, params SubTaskParams) (*models.SubTask, error) {
	stage, err := normalizeStage(params.Stage)
	if err != nil {
		return nil, err
	}

	subUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate subtask uuid")
		return nil, err
	}

	sub := &models.SubTask{
		ID:    subUUID.String(),
		Title: params.Title,
		Date:  params.Date,
		Team:  refs(dedupe(params.TeamIDs)),
		Tag:   params.Tag,
		Stage: stage,
	}
	if sub.Date.IsZero() {
		sub.Date = time.Now().In(s.store.loc)
	}

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = s.store.insertSubTask(ctx, tx, params.TaskID, sub)
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Error().
				Str("task_id", params.TaskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to insert subtask")
		return nil, err
	}

	err = s.recordActivity(ctx, tx, params.TaskID, models.ActivitySubTaskAdded,
		fmt.Sprintf("Sub-task %q added", sub.Title), params.ActorID)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", params.TaskID).
		Str("subtask_id", sub.ID).
		Msg("created subtask")
	return sub, nil
}

func (s *taskServiceImpl) UpdateSubTask(ctx context.Context, params SubTaskParams) (*models.SubTask, error) {
	stage, err := normalizeStage(params.Stage)
	if err != nil {
		return nil, err
	}

	sub := &models.SubTask{
		ID:    params.SubTaskID,
		Title: params.Title,
		Date:  params.Date,
		Team:  refs(dedupe(params.TeamIDs)),
		Tag:   params.Tag,
		Stage: stage,
	}

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const updateSubTaskQuery = `
UPDATE sub_tasks
SET title = $1,
    date = COALESCE($2, date),
    tag = $3,
    stage = $4
WHERE id = $5 AND
      task_id = $6
RETURNING date
`
	var date *time.Time
	if !sub.Date.IsZero() {
		date = &sub.Date
	}
	err = tx.QueryRow(
		ctx,
		updateSubTaskQuery,
		sub.Title,
		date,
		sub.Tag,
		string(sub.Stage),
		sub.ID,
		params.TaskID,
	).Scan(&sub.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", params.TaskID).
				Str("subtask_id", sub.ID).
				Msg("subtask not found")
			return nil, ErrSubTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("subtask_id", sub.ID).
			Msg("failed to update subtask")
		return nil, err
	}
	sub.Date = sub.Date.In(s.store.loc)

	err = s.store.replaceTeam(ctx, tx, "sub_task_team", "sub_task_id", sub.ID, teamIDs(sub.Team))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("subtask_id", sub.ID).
			Msg("failed to replace subtask team")
		return nil, err
	}

	err = s.recordActivity(ctx, tx, params.TaskID, models.ActivitySubTaskUpdated,
		fmt.Sprintf("Sub-task %q updated", sub.Title), params.ActorID)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", params.TaskID).
		Str("subtask_id", sub.ID).
		Msg("updated subtask")
	return sub, nil
}

func (s *taskServiceImpl) DeleteSubTask(ctx context.Context, params DeleteSubTaskParams) error {
	const deleteSubTaskQuery = `
DELETE FROM sub_tasks
WHERE id = $1 AND
      task_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteSubTaskQuery,
		params.SubTaskID,
		params.TaskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("subtask_id", params.SubTaskID).
			Msg("failed to delete subtask")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", params.TaskID).
			Str("subtask_id", params.SubTaskID).
			Msg("subtask not found")
		return ErrSubTaskNotFound
	}

	s.logger.Info().
		Str("task_id", params.TaskID).
		Str("subtask_id", params.SubTaskID).
		Msg("deleted subtask")
	return nil
}

func (s *taskServiceImpl) DashboardStatistics(ctx context.Context, params DashboardParams) (*Dashboard, error) {
	filter := TaskFilter{}
	if !params.IsAdmin {
		filter.UserID = params.UserID
	}

	tasks, err := s.store.selectTasks(ctx, s.pgPool, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select dashboard tasks")
		return nil, err
	}

	dashboard := buildDashboard(tasks, filter.UserID)

	if params.IsAdmin {
		const selectRecentUsersQuery = `
SELECT id,
       name,
       title,
       role,
       email,
       is_admin,
       is_active,
       created_at,
       updated_at
FROM users
WHERE is_active
ORDER BY created_at DESC
LIMIT $1
`
		rows, err := s.pgPool.Query(ctx, selectRecentUsersQuery, dashboardUsers)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to select recent users")
			return nil, err
		}
		dashboard.Users, err = pgx.CollectRows(rows, scanUser)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan recent users")
			return nil, err
		}
	}

	s.logger.Debug().
		Str("user_id", params.UserID).
		Bool("is_admin", params.IsAdmin).
		Int("total", dashboard.TotalTasks).
		Msg("built dashboard statistics")
	return dashboard, nil
}

func (s *taskServiceImpl) recordActivity(ctx context.Context, q querier, taskID string, typ models.ActivityType, text, actorID string) error {
	activity, err := s.newActivity(typ, text, actorID)
	if err != nil {
		return err
	}

	err = s.store.insertActivity(ctx, q, taskID, activity)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("type", string(typ)).
			Msg("failed to record activity")
		return err
	}
	return nil
}

func (s *taskServiceImpl) newActivity(typ models.ActivityType, text, actorID string) (*models.Activity, error) {
	activityUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate activity uuid")
		return nil, err
	}
	return &models.Activity{
		ID:        activityUUID.String(),
		Type:      typ,
		Text:      text,
		Timestamp: time.Now(),
		Actor:     models.UserRef{ID: actorID},
	}, nil
}

// buildDashboard expects tasks ordered newest first.
func buildDashboard(tasks []models.Task, actor string) *Dashboard {
	d := &Dashboard{
		TotalTasks:      len(tasks),
		TasksByStage:    make(map[models.Stage]int),
		TasksByPriority: make(map[models.Priority]int),
		Summary:         tracking.Aggregate(tasks, actor),
	}
	for _, task := range tasks {
		d.TasksByStage[task.Stage]++
		d.TasksByPriority[task.Priority]++
	}
	d.LastTasks = tasks[:min(len(tasks), dashboardLastTasks)]
	return d
}

func subTasksOf(subTasks []models.SubTask, userID string) []models.SubTask {
	filtered := make([]models.SubTask, 0, len(subTasks))
	for i := range subTasks {
		if subTasks[i].HasMember(userID) {
			filtered = append(filtered, subTasks[i])
		}
	}
	return filtered
}

// assignmentNoticeText reproduces the wording users receive when a task is
// assigned to them.
func assignmentNoticeText(teamSize int, priority models.Priority, date time.Time) string {
	text := "New task has been assigned to you"
	if teamSize > 1 {
		text += fmt.Sprintf(" and %d others.", teamSize-1)
	}
	return text + fmt.Sprintf(
		" The task priority is set a %s priority, so check and act accordingly. The task date is %s. Thank you!!!",
		priority, date.Format("Mon Jan 02 2006"))
}

func normalizeTaskEnums(priority models.Priority, stage models.Stage) (models.Priority, models.Stage, error) {
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.Valid() {
		return "", "", ErrInvalidTaskPriority
	}

	stage, err := normalizeStage(stage)
	if err != nil {
		return "", "", err
	}
	return priority, stage, nil
}

func normalizeStage(stage models.Stage) (models.Stage, error) {
	if stage == "" {
		return models.StageTodo, nil
	}
	if !stage.Valid() {
		return "", ErrInvalidTaskStage
	}
	return stage, nil
}
