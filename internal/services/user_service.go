package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskboard/internal/models"
)

type userServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewUserService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) UserService {
	return &userServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{ID: userID}

	const selectUserByIDQuery = `
SELECT name,
       title,
       role,
       email,
       is_admin,
       is_active,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByIDQuery,
		user.ID,
	).Scan(
		&user.Name,
		&user.Title,
		&user.Role,
		&user.Email,
		&user.IsAdmin,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user by id")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Msg("selected user by id")
	return user, nil
}

func (s *userServiceImpl) GetTeamList(ctx context.Context) ([]models.User, error) {
	const selectActiveUsersQuery = `
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
ORDER BY name
`
	rows, err := s.pgPool.Query(ctx, selectActiveUsersQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select active users")
		return nil, err
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to scan users")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(users)).
		Msg("selected active users")
	return users, nil
}

func (s *userServiceImpl) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	const updateUserAdminQuery = `
UPDATE users
SET is_admin = $1,
    updated_at = $2
WHERE email = $3
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateUserAdminQuery,
		isAdmin,
		time.Now(),
		email,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to update user admin flag")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("email", email).
			Msg("user not found")
		return ErrUserNotFound
	}

	s.logger.Info().
		Str("email", email).
		Bool("is_admin", isAdmin).
		Msg("updated user admin flag")
	return nil
}

func scanUser(row pgx.CollectableRow) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Title,
		&user.Role,
		&user.Email,
		&user.IsAdmin,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
