package app

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// newMigrationProvider reads the embedded migrations and applies them
// through db.
func newMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectPostgres, db, fsys)
}

// Migrate applies every pending migration. Versions are tracked by goose
// in its own table.
func (a *App) Migrate(ctx context.Context) error {
	if a.pgPool == nil {
		return errPostgresNotConnected
	}

	db := stdlib.OpenDBFromPool(a.pgPool)
	defer db.Close()

	provider, err := newMigrationProvider(db)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to load migrations")
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to apply migrations")
		return err
	}
	for _, r := range results {
		a.Logger.Info().
			Int64("version", r.Source.Version).
			Dur("duration", r.Duration).
			Msg("applied migration")
	}
	return nil
}
