package tracking

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/adanyl0v/taskboard/internal/models"
)

const (
	// TimestampLayout formats interval starts in export rows.
	TimestampLayout = "2006-01-02 15:04"
	// TotalRowLabel marks the per-task total row.
	TotalRowLabel   = "Total Duration"
	emptyCell       = "-"
)

// Row is one line of a spreadsheet or PDF export.
type Row struct {
	TaskID     string
	Applicant  string
	Order      string
	Type       string
	Timestamp  string
	Duration   string
	DurationMs int64
	Project    string
	Stage      string
}

// Rows flattens tasks into export rows: one per closed interval followed by
// a total row for every task that has at least one interval. Timestamps are
// rendered in loc, or UTC when loc is nil.
func Rows(tasks []models.Task, actor string, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}

	var rows []Row
	for i := range tasks {
		task := &tasks[i]
		intervals := Intervals(task.Activities, actor)
		if len(intervals) == 0 {
			continue
		}

		applicant := ApplicantLabel(task.Team, actor)
		var total time.Duration
		for _, in := range intervals {
			d := in.Duration()
			total += d

			order := in.Start.Text
			if order == "" {
				order = emptyCell
			}
			rows = append(rows, Row{
				TaskID:     task.ID,
				Applicant:  applicant,
				Order:      order,
				Type:       string(in.Start.Type),
				Timestamp:  in.Start.Timestamp.In(loc).Format(TimestampLayout),
				Duration:   FormatDuration(d),
				DurationMs: d.Milliseconds(),
				Project:    task.Title,
				Stage:      string(task.Stage),
			})
		}

		rows = append(rows, Row{
			TaskID:     task.ID,
			Applicant:  applicant,
			Order:      TotalRowLabel,
			Type:       emptyCell,
			Timestamp:  emptyCell,
			Duration:   FormatDuration(total),
			DurationMs: total.Milliseconds(),
			Project:    task.Title,
			Stage:      string(task.Stage),
		})
	}
	return rows
}

// Header matches the column order of Row.Record.
func Header() []string {
	return []string{"Applicant", "Order", "Activity", "Timestamp", "Duration", "Project", "Stage"}
}

// Record returns the row cells in Header order.
func (r Row) Record() []string {
	return []string{r.Applicant, r.Order, r.Type, r.Timestamp, r.Duration, r.Project, r.Stage}
}

// WriteCSV writes the header followed by one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	err := cw.Write(Header())
	if err != nil {
		return err
	}
	for _, row := range rows {
		err = cw.Write(row.Record())
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
