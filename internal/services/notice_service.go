package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskboard/internal/models"
)

type noticeServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewNoticeService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) NoticeService {
	return &noticeServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *noticeServiceImpl) GetNotices(ctx context.Context, userID string) ([]models.Notice, error) {
	const selectNoticesQuery = `
SELECT n.id,
       COALESCE(n.task_id, ''),
       COALESCE(t.title, ''),
       n.text,
       n.notice_type,
       nt.is_read,
       n.created_at
FROM notices n
JOIN notice_team nt ON nt.notice_id = n.id
LEFT JOIN tasks t ON t.id = n.task_id
WHERE nt.user_id = $1 AND
      NOT nt.is_read
ORDER BY n.created_at DESC
`
	rows, err := s.pgPool.Query(ctx, selectNoticesQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select notices")
		return nil, err
	}

	notices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Notice, error) {
		var n models.Notice
		err := row.Scan(
			&n.ID,
			&n.TaskID,
			&n.TaskTitle,
			&n.Text,
			&n.Type,
			&n.IsRead,
			&n.CreatedAt,
		)
		return n, err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to scan notices")
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("count", len(notices)).
		Msg("selected notices")
	return notices, nil
}

func (s *noticeServiceImpl) MarkNoticesRead(ctx context.Context, params MarkNoticesReadParams) error {
	const markNoticeReadQuery = `
UPDATE notice_team
SET is_read = TRUE
WHERE user_id = $1 AND
      ($2 = '' OR notice_id = $2)
`
	tag, err := s.pgPool.Exec(
		ctx,
		markNoticeReadQuery,
		params.UserID,
		params.NoticeID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to mark notices read")
		return err
	}
	if params.NoticeID != "" && tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("user_id", params.UserID).
			Str("notice_id", params.NoticeID).
			Msg("notice not found")
		return ErrNoticeNotFound
	}

	s.logger.Info().
		Str("user_id", params.UserID).
		Str("notice_id", params.NoticeID).
		Int64("affected", tag.RowsAffected()).
		Msg("marked notices read")
	return nil
}

func insertNotice(ctx context.Context, q querier, taskID, text, noticeType string, team []string) error {
	noticeUUID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate notice uuid: %w", err)
	}
	noticeID := noticeUUID.String()

	const insertNoticeQuery = `
INSERT INTO notices (id,
                     task_id,
                     text,
                     notice_type,
                     created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err = q.Exec(
		ctx,
		insertNoticeQuery,
		noticeID,
		taskID,
		text,
		noticeType,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert notice: %w", err)
	}
	if len(team) == 0 {
		return nil
	}

	const insertNoticeTeamQuery = `
INSERT INTO notice_team (notice_id, user_id)
SELECT $1, member
FROM unnest($2::text[]) AS member
ON CONFLICT DO NOTHING
`
	_, err = q.Exec(ctx, insertNoticeTeamQuery, noticeID, team)
	if err != nil {
		return fmt.Errorf("failed to insert notice team: %w", err)
	}
	return nil
}
