package app

import (
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskboard/internal/config"
)

// App owns the process-wide dependencies and hands them to constructors.
type App struct {
	Logger   zerolog.Logger
	Config   *config.Config
	Location *time.Location

	pgPool *pgxpool.Pool
}

// New reads the configuration with reader and prepares the application
// logger. Postgres is connected separately by ConnectPostgres.
func New(logger zerolog.Logger, reader config.Reader) (*App, error) {
	cfg, err := reader.Read()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to read config")
		return nil, err
	}

	logger, err = newApplicationLogger(logger, cfg.Env, os.Stdout)
	if err != nil {
		logger.Error().
			Err(err).
			Str("env", cfg.Env).
			Msg("failed to init application logger")
		return nil, err
	}
	logger.Info().
		Str("env", cfg.Env).
		Msg("read config")

	loc, err := cfg.Report.Location()
	if err != nil {
		logger.Error().
			Err(err).
			Str("timezone", cfg.Report.Timezone).
			Msg("failed to load report timezone")
		return nil, err
	}

	return &App{
		Logger:   logger,
		Config:   cfg,
		Location: loc,
	}, nil
}
