// Package calendar reads meeting events from an M365 calendar JSON
// export. Private entries are filtered here, before the core ever
// sees them.
package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dratasich/log-activity/internal/errors"
	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/report"
)

// entry is one exported calendar record.
type entry struct {
	Subject  string   `json:"subject"`
	Start    string   `json:"startWithTimeZone"`
	End      string   `json:"endWithTimeZone"`
	Category []string `json:"categories"`
}

// Read loads the export at path and returns calendar EventRecords in
// [from, to). The first non-private category of an entry becomes its
// project label; private-only and uncategorized entries are dropped,
// as are duplicates of the same (subject, start, end). Malformed
// entries are skipped with a diagnostic.
func Read(path, privateCategory string, from, to time.Time) ([]model.EventRecord, []report.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NewNotFound(fmt.Sprintf("calendar export %s", path))
		}
		return nil, nil, errors.NewInternal(err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, errors.NewInternal(fmt.Errorf("parse calendar export: %w", err))
	}

	var events []model.EventRecord
	var skipped []report.Diagnostic
	seen := make(map[string]bool)

	skip := func(e entry, reason string) {
		skipped = append(skipped, report.Diagnostic{
			Source: string(model.SourceCalendar),
			Reason: reason,
			Record: e.Subject,
		})
	}

	for _, e := range entries {
		if e.Subject == "" {
			skip(e, "missing subject")
			continue
		}
		start, err := parseTime(e.Start)
		if err != nil {
			skip(e, fmt.Sprintf("malformed start %q", e.Start))
			continue
		}
		end, err := parseTime(e.End)
		if err != nil {
			skip(e, fmt.Sprintf("malformed end %q", e.End))
			continue
		}
		if end.Before(start) {
			skip(e, "negative duration")
			continue
		}

		// Uncategorized and private entries are filtered, matching the
		// export convention: only categorized work meetings count.
		project := pickCategory(e.Category, privateCategory)
		if project == "" {
			continue
		}

		key := e.Subject + "\x00" + e.Start + "\x00" + e.End
		if seen[key] {
			continue
		}
		seen[key] = true

		if start.Before(from) || !start.Before(to) {
			continue
		}

		events = append(events, model.EventRecord{
			ID:        key,
			Source:    model.SourceCalendar,
			Timestamp: start.UTC(),
			Duration:  end.Sub(start),
			Fields: model.Fields{
				"subject": e.Subject,
				"project": project,
			},
		})
	}
	return events, skipped, nil
}

// pickCategory returns the first non-private category, or "".
func pickCategory(categories []string, private string) string {
	for _, c := range categories {
		if c != "" && c != private {
			return c
		}
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
