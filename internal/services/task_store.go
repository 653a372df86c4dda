package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/taskboard/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// taskStore loads tasks with their team, activities and sub-tasks.
// Dates are converted to loc.
type taskStore struct {
	loc *time.Location
}

func (st taskStore) selectTasks(ctx context.Context, q querier, filter TaskFilter) ([]models.Task, error) {
	const selectTasksQuery = `
SELECT id,
       title,
       date,
       priority,
       stage,
       assets,
       is_trashed,
       created_at,
       updated_at
FROM tasks
WHERE is_trashed = $1 AND
      ($2 = '' OR stage = $2) AND
      ($3 = '' OR EXISTS (SELECT 1
                          FROM task_team tt
                          WHERE tt.task_id = tasks.id AND
                                tt.user_id = $3))
ORDER BY created_at DESC
LIMIT NULLIF($4::int, 0)
`
	rows, err := q.Query(
		ctx,
		selectTasksQuery,
		filter.Trashed,
		string(filter.Stage),
		filter.UserID,
		filter.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}

	err = st.populate(ctx, q, tasks)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (st taskStore) selectTaskByID(ctx context.Context, q querier, taskID string) (*models.Task, error) {
	const selectTaskByIDQuery = `
SELECT id,
       title,
       date,
       priority,
       stage,
       assets,
       is_trashed,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	rows, err := q.Query(ctx, selectTaskByIDQuery, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to select task: %w", err)
	}

	task, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	tasks := []models.Task{task}
	err = st.populate(ctx, q, tasks)
	if err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (st taskStore) populate(ctx context.Context, q querier, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]string, len(tasks))
	byID := make(map[string]*models.Task, len(tasks))
	for i := range tasks {
		tasks[i].Date = tasks[i].Date.In(st.loc)
		ids[i] = tasks[i].ID
		byID[tasks[i].ID] = &tasks[i]
	}

	const selectTeamQuery = `
SELECT tt.task_id,
       u.id,
       u.name,
       u.title,
       u.role,
       u.email
FROM task_team tt
JOIN users u ON u.id = tt.user_id
WHERE tt.task_id = ANY($1)
ORDER BY tt.task_id, tt.position
`
	rows, err := q.Query(ctx, selectTeamQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to select task team: %w", err)
	}
	var (
		ownerID string
		ref     models.UserRef
	)
	_, err = pgx.ForEachRow(rows, []any{&ownerID, &ref.ID, &ref.Name, &ref.Title, &ref.Role, &ref.Email}, func() error {
		task := byID[ownerID]
		task.Team = append(task.Team, ref)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan task team: %w", err)
	}

	const selectActivitiesQuery = `
SELECT a.task_id,
       a.id,
       a.type,
       a.text,
       a.created_at,
       COALESCE(u.id, ''),
       COALESCE(u.name, '')
FROM activities a
LEFT JOIN users u ON u.id = a.user_id
WHERE a.task_id = ANY($1)
ORDER BY a.seq
`
	rows, err = q.Query(ctx, selectActivitiesQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to select activities: %w", err)
	}
	var activity models.Activity
	_, err = pgx.ForEachRow(rows, []any{
		&ownerID,
		&activity.ID,
		&activity.Type,
		&activity.Text,
		&activity.Timestamp,
		&activity.Actor.ID,
		&activity.Actor.Name,
	}, func() error {
		task := byID[ownerID]
		task.Activities = append(task.Activities, activity)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan activities: %w", err)
	}

	const selectSubTasksQuery = `
SELECT task_id,
       id,
       title,
       date,
       tag,
       stage
FROM sub_tasks
WHERE task_id = ANY($1)
ORDER BY seq
`
	rows, err = q.Query(ctx, selectSubTasksQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to select subtasks: %w", err)
	}
	type subTaskKey struct {
		task  *models.Task
		index int
	}
	subTasks := make(map[string]subTaskKey)
	var sub models.SubTask
	_, err = pgx.ForEachRow(rows, []any{&ownerID, &sub.ID, &sub.Title, &sub.Date, &sub.Tag, &sub.Stage}, func() error {
		task := byID[ownerID]
		sub.Date = sub.Date.In(st.loc)
		task.SubTasks = append(task.SubTasks, sub)
		subTasks[sub.ID] = subTaskKey{task: task, index: len(task.SubTasks) - 1}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan subtasks: %w", err)
	}
	if len(subTasks) == 0 {
		return nil
	}

	const selectSubTaskTeamQuery = `
SELECT stt.sub_task_id,
       u.id,
       u.name,
       u.title,
       u.role,
       u.email
FROM sub_task_team stt
JOIN sub_tasks st ON st.id = stt.sub_task_id
JOIN users u ON u.id = stt.user_id
WHERE st.task_id = ANY($1)
ORDER BY stt.sub_task_id, stt.position
`
	rows, err = q.Query(ctx, selectSubTaskTeamQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to select subtask team: %w", err)
	}
	_, err = pgx.ForEachRow(rows, []any{&ownerID, &ref.ID, &ref.Name, &ref.Title, &ref.Role, &ref.Email}, func() error {
		key := subTasks[ownerID]
		sub := &key.task.SubTasks[key.index]
		sub.Team = append(sub.Team, ref)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan subtask team: %w", err)
	}
	return nil
}

func (st taskStore) insertTask(ctx context.Context, q querier, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (id,
                   title,
                   date,
                   priority,
                   stage,
                   assets,
                   is_trashed,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := q.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.Title,
		task.Date,
		string(task.Priority),
		string(task.Stage),
		nonNilStrings(task.Assets),
		task.IsTrashed,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// replaceTeam rewrites the membership table rows of owner in the order
// given by userIDs. table and column are fixed identifiers, never input.
func (st taskStore) replaceTeam(ctx context.Context, q querier, table, column, owner string, userIDs []string) error {
	_, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, column), owner)
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	insertTeamQuery := fmt.Sprintf(`
INSERT INTO %s (%s, user_id, position)
SELECT $1, member.user_id, member.position
FROM unnest($2::text[]) WITH ORDINALITY AS member(user_id, position)
ON CONFLICT DO NOTHING
`, table, column)
	_, err = q.Exec(ctx, insertTeamQuery, owner, dedupe(userIDs))
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownTeamMember
		}
		return fmt.Errorf("failed to insert %s: %w", table, err)
	}
	return nil
}

func (st taskStore) insertActivity(ctx context.Context, q querier, taskID string, activity *models.Activity) error {
	const insertActivityQuery = `
INSERT INTO activities (id,
                        task_id,
                        type,
                        text,
                        user_id,
                        created_at)
VALUES ($1, $2, $3, $4, NULLIF($5::text, ''), $6)
`
	_, err := q.Exec(
		ctx,
		insertActivityQuery,
		activity.ID,
		taskID,
		string(activity.Type),
		activity.Text,
		activity.Actor.ID,
		activity.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

func (st taskStore) insertSubTask(ctx context.Context, q querier, taskID string, sub *models.SubTask) error {
	const insertSubTaskQuery = `
INSERT INTO sub_tasks (id,
                       task_id,
                       title,
                       date,
                       tag,
                       stage)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := q.Exec(
		ctx,
		insertSubTaskQuery,
		sub.ID,
		taskID,
		sub.Title,
		sub.Date,
		sub.Tag,
		string(sub.Stage),
	)
	if err != nil {
		return fmt.Errorf("failed to insert subtask: %w", err)
	}

	ids := make([]string, len(sub.Team))
	for i, u := range sub.Team {
		ids[i] = u.ID
	}
	return st.replaceTeam(ctx, q, "sub_task_team", "sub_task_id", sub.ID, ids)
}

func scanTask(row pgx.CollectableRow) (models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Date,
		&task.Priority,
		&task.Stage,
		&task.Assets,
		&task.IsTrashed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}

func teamIDs(team []models.UserRef) []string {
	ids := make([]string, len(team))
	for i, u := range team {
		ids[i] = u.ID
	}
	return ids
}

func refs(ids []string) []models.UserRef {
	team := make([]models.UserRef, len(ids))
	for i, id := range ids {
		team[i] = models.UserRef{ID: id}
	}
	return team
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
