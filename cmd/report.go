package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/taskboard/internal/snapshot"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

var errUnknownFormat = errors.New("unknown format, use text or csv")

const (
	formatText = "text"
	formatCSV  = "csv"
)

type reportOptions struct {
	file     string
	userID   string
	format   string
	timezone string
}

func newReportCmd(logger zerolog.Logger) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute durations from a task snapshot file.",
		Long:  `Reads a YAML or JSON task snapshot and prints per-task durations with a weekday summary, or the export rows as CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr so the report can be piped.
			return runReport(cmd.OutOrStdout(), logger.Output(os.Stderr), opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "tasks.yaml", "Path to the task snapshot.")
	cmd.Flags().StringVar(&opts.userID, "user", "", "Attribute durations to this user id.")
	cmd.Flags().StringVar(&opts.format, "format", formatText, "Output format: text or csv.")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "Europe/Kyiv", "Timezone for weekdays and timestamps.")
	return cmd
}

func runReport(out io.Writer, logger zerolog.Logger, opts *reportOptions) error {
	if opts.format != formatText && opts.format != formatCSV {
		return errUnknownFormat
	}

	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", opts.timezone, err)
	}

	tasks, err := snapshot.Load(opts.file, loc)
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", opts.file).
			Msg("failed to load snapshot")
		return err
	}
	for i := range tasks {
		tasks[i].Date = tasks[i].Date.In(loc)
	}

	if opts.format == formatCSV {
		return tracking.WriteCSV(out, tracking.Rows(tasks, opts.userID, loc))
	}

	summary := tracking.Aggregate(tasks, opts.userID)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Project\tStage\tApplicant\tDuration")
	for i := range tasks {
		task := &tasks[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			task.Title,
			task.Stage,
			tracking.ApplicantLabel(task.Team, opts.userID),
			tracking.FormatDuration(tracking.Duration(task.Activities, opts.userID)),
		)
	}
	err = tw.Flush()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTasks: %d\n", summary.TaskCount)
	fmt.Fprintf(out, "%s: %s\n", tracking.TotalRowLabel, tracking.FormatDuration(summary.TotalDuration))
	for _, day := range tracking.Weekdays {
		fmt.Fprintf(out, "%-9s %d\n", day, summary.CountsByWeekday[day])
	}
	return nil
}
