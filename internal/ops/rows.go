package ops

import (
	"strings"
	"time"

	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/report"
	"github.com/dratasich/log-activity/internal/writer"
)

// ActivityRow is one activity-ledger row in serialized form, shared
// by the MCP tools and the CLI --json output.
type ActivityRow struct {
	Date     string `json:"date"`
	Project  string `json:"project"`
	Duration string `json:"duration"`
	Hours    string `json:"hours"`
	Desc     string `json:"desc"`
}

// WorkingTimeRow is one working-time-ledger row in serialized form.
type WorkingTimeRow struct {
	Date       string `json:"date"`
	Active     string `json:"active"`
	LunchIncl  bool   `json:"lunch_incl"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Violations string `json:"violations"`
}

// ActivityRows formats activity records the way the CSV writer does,
// durations rounded to granule.
func ActivityRows(records []model.ActivityRecord, granule time.Duration) []ActivityRow {
	rows := make([]ActivityRow, 0, len(records))
	for _, r := range records {
		rounded := report.RoundDuration(r.Duration, granule)
		rows = append(rows, ActivityRow{
			Date:     writer.FormatDate(r.Date),
			Project:  r.Project,
			Duration: writer.FormatDelta(rounded),
			Hours:    writer.FormatHours(rounded),
			Desc:     strings.Join(r.Description, "; "),
		})
	}
	return rows
}

// WorkingTimeRows formats working days the way the CSV writer does.
func WorkingTimeRows(days []model.WorkingDay) []WorkingTimeRow {
	rows := make([]WorkingTimeRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, WorkingTimeRow{
			Date:       writer.FormatDate(d.Date),
			Active:     writer.FormatDelta(d.Active),
			LunchIncl:  d.LunchIncluded,
			Start:      writer.FormatClock(d.AlignedStart),
			End:        writer.FormatClock(d.AlignedEnd),
			Violations: strings.Join(d.Violations, ";"),
		})
	}
	return rows
}
