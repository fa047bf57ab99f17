// Package writer serializes the derived ledgers to CSV.
package writer

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dratasich/log-activity/internal/errors"
	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/report"
)

// ActivitiesFile and WorkingTimeFile are the default ledger file names.
const (
	ActivitiesFile  = "activities.csv"
	WorkingTimeFile = "working_time.csv"
)

// WriteActivities writes the activity ledger as CSV. Durations are
// rounded to the given granule before serialization; the caller is
// expected to pass records already sorted by (date, project,
// duration), which report.Aggregate guarantees.
func WriteActivities(w io.Writer, records []model.ActivityRecord, granule time.Duration) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "project", "duration", "hours", "desc"}); err != nil {
		return errors.NewInternal(err)
	}
	for _, r := range records {
		rounded := report.RoundDuration(r.Duration, granule)
		row := []string{
			FormatDate(r.Date),
			r.Project,
			FormatDelta(rounded),
			FormatHours(rounded),
			strings.Join(r.Description, "; "),
		}
		if err := cw.Write(row); err != nil {
			return errors.NewInternal(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// WriteWorkingTime writes the working-time ledger as CSV. Violations
// are semicolon-joined into the last column.
func WriteWorkingTime(w io.Writer, days []model.WorkingDay) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "active", "lunch_incl", "start", "end", "violations"}); err != nil {
		return errors.NewInternal(err)
	}
	for _, d := range days {
		row := []string{
			FormatDate(d.Date),
			FormatDelta(d.Active),
			strconv.FormatBool(d.LunchIncluded),
			FormatClock(d.AlignedStart),
			FormatClock(d.AlignedEnd),
			strings.Join(d.Violations, ";"),
		}
		if err := cw.Write(row); err != nil {
			return errors.NewInternal(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SaveActivities writes the activity ledger to dir/activities.csv.
// An empty ledger writes nothing and returns an empty path.
func SaveActivities(dir string, records []model.ActivityRecord, granule time.Duration) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	path := filepath.Join(dir, ActivitiesFile)
	return path, saveCSV(path, func(w io.Writer) error {
		return WriteActivities(w, records, granule)
	})
}

// SaveWorkingTime writes the working-time ledger to
// dir/working_time.csv. An empty ledger writes nothing and returns an
// empty path.
func SaveWorkingTime(dir string, days []model.WorkingDay) (string, error) {
	if len(days) == 0 {
		return "", nil
	}
	path := filepath.Join(dir, WorkingTimeFile)
	return path, saveCSV(path, func(w io.Writer) error {
		return WriteWorkingTime(w, days)
	})
}

// saveCSV writes via a temp file and atomic rename so a failed run
// never truncates an existing ledger.
func saveCSV(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewInternal(err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.NewInternal(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
