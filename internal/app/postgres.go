package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var errPostgresNotConnected = errors.New("postgres is not connected")

func (a *App) ConnectPostgres(ctx context.Context) error {
	cfg := a.Config.Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		return err
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	err = pool.Ping(pingCtx)
	if err != nil {
		pool.Close()
		a.Logger.Error().
			Err(err).
			Msg("failed to ping postgres")
		return err
	}
	a.Logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")

	a.pgPool = pool
	return nil
}

func (a *App) DisconnectPostgres() {
	if a.pgPool == nil {
		return
	}
	a.pgPool.Close()
	a.pgPool = nil
	a.Logger.Info().Msg("disconnected from postgres")
}
