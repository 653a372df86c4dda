package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/taskboard/internal/app"
	"github.com/adanyl0v/taskboard/internal/calendar"
	"github.com/adanyl0v/taskboard/internal/config"
	"github.com/adanyl0v/taskboard/internal/services"
)

var errMissingCredentials = errors.New("CALENDAR_CREDENTIALS_FILE is not set")

func main() {
	logger := app.NewDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(logger).ExecuteContext(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("command failed")
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd(logger zerolog.Logger) *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Task management backend with activity time tracking.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a .env, .yaml or .json config file. The environment is used when empty.")

	rootCmd.AddCommand(
		newServeCmd(logger, opts),
		newMigrateCmd(logger, opts),
		newReportCmd(logger),
		newCalendarSyncCmd(logger, opts),
		newGrantAdminCmd(logger, opts),
	)
	return rootCmd
}

func (o *rootOptions) reader() config.Reader {
	if o.configPath != "" {
		return config.NewFileReader(o.configPath)
	}
	return config.NewEnvReader()
}

// connect builds the App and connects it to Postgres. The returned func
// disconnects.
func (o *rootOptions) connect(ctx context.Context, logger zerolog.Logger) (*app.App, func(), error) {
	a, err := app.New(logger, o.reader())
	if err != nil {
		return nil, nil, err
	}

	err = a.ConnectPostgres(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a, a.DisconnectPostgres, nil
}

func newServeCmd(logger zerolog.Logger, opts *rootOptions) *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, disconnect, err := opts.connect(ctx, logger)
			if err != nil {
				return err
			}
			defer disconnect()

			if !skipMigrate {
				err = a.Migrate(ctx)
				if err != nil {
					return err
				}
			}

			svc, err := a.Services()
			if err != nil {
				return err
			}
			return a.ListenAndServeHTTP(ctx, a.NewRouter(svc))
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply pending migrations on start.")
	return cmd
}

func newMigrateCmd(logger zerolog.Logger, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, disconnect, err := opts.connect(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer disconnect()

			return a.Migrate(cmd.Context())
		},
	}
}

func newCalendarSyncCmd(logger zerolog.Logger, opts *rootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "calendar-sync",
		Short: "Publish task dates to Google Calendar.",
		Long:  `Creates or updates one all-day event per active task in the configured calendar. Requires CALENDAR_CREDENTIALS_FILE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, disconnect, err := opts.connect(ctx, logger)
			if err != nil {
				return err
			}
			defer disconnect()

			calCfg := a.Config.Calendar
			if calCfg.CredentialsFile == "" {
				return errMissingCredentials
			}

			svc, err := a.Services()
			if err != nil {
				return err
			}
			tasks, err := svc.Tasks.GetTasks(ctx, services.TaskFilter{UserID: userID})
			if err != nil {
				return err
			}

			srv, err := calendar.NewService(ctx, calCfg.CredentialsFile)
			if err != nil {
				a.Logger.Error().
					Err(err).
					Msg("failed to create calendar service")
				return err
			}

			publisher := calendar.NewPublisher(
				a.Logger.With().Str("component", "calendar").Logger(),
				srv,
				calCfg.CalendarID,
				calCfg.Concurrency,
				a.Location,
			)
			result, err := publisher.Publish(ctx, tasks)
			cmd.Printf("created: %d, updated: %d, unchanged: %d\n",
				result.Created, result.Updated, result.Unchanged)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Only publish tasks of this user id.")
	return cmd
}

func newGrantAdminCmd(logger zerolog.Logger, opts *rootOptions) *cobra.Command {
	var (
		email  string
		revoke bool
	)
	cmd := &cobra.Command{
		Use:   "grant-admin",
		Short: "Grant or revoke admin rights.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, disconnect, err := opts.connect(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer disconnect()

			svc, err := a.Services()
			if err != nil {
				return err
			}
			err = svc.Users.SetAdmin(cmd.Context(), email, !revoke)
			if err != nil {
				return err
			}
			cmd.Printf("%s is admin: %t\n", email, !revoke)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email of the user.")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke admin rights instead.")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
