// Package aw reads events from an ActivityWatch server's SQLite
// store. It is an adapter: it normalizes watcher rows into
// EventRecords and owns none of the pipeline rules.
package aw

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/dratasich/log-activity/internal/errors"
	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/report"
)

// Watcher client prefixes as registered by the standard watchers.
const (
	ClientAFK    = "aw-watcher-afk"
	ClientWindow = "aw-watcher-window"
	ClientWeb    = "aw-watcher-web"
	ClientGit    = "aw-git-hooks"
)

// sourceByClient maps watcher prefixes onto pipeline sources.
var sourceByClient = map[string]model.Source{
	ClientAFK:    model.SourcePresence,
	ClientWindow: model.SourceEditor,
	ClientWeb:    model.SourceWeb,
	ClientGit:    model.SourceGitCommit,
}

// Store is a read-only handle on an aw-server database.
type Store struct {
	db *sql.DB
}

// Open opens the aw-server SQLite database at path read-only.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewNotFound(fmt.Sprintf("activitywatch store %s", path))
	}
	// query_only guards against accidental writes into the watcher's
	// own database.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=query_only(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("open activitywatch store: %w", err))
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// bucket is one row of the aw-server bucket table.
type bucket struct {
	key    int64
	id     string
	client string
}

// buckets returns all buckets whose client starts with prefix.
func (s *Store) buckets(ctx context.Context, prefix string) ([]bucket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, id, client FROM bucketmodel WHERE client LIKE ? ORDER BY key`,
		prefix+"%")
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("query buckets: %w", err))
	}
	defer rows.Close()

	var out []bucket
	for rows.Next() {
		var b bucket
		if err := rows.Scan(&b.key, &b.id, &b.client); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Events reads all events of the watchers matching clientPrefix in
// [from, to) and normalizes them into EventRecords of the source the
// prefix maps to. Rows that fail to parse are skipped and reported as
// diagnostics; only infrastructure failures return an error.
func (s *Store) Events(ctx context.Context, clientPrefix string, from, to time.Time) ([]model.EventRecord, []report.Diagnostic, error) {
	source, ok := sourceByClient[clientPrefix]
	if !ok {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("unknown watcher prefix %q", clientPrefix))
	}

	buckets, err := s.buckets(ctx, clientPrefix)
	if err != nil {
		return nil, nil, err
	}
	if len(buckets) == 0 {
		slog.Warn("no buckets for watcher", "prefix", clientPrefix)
		return nil, nil, nil
	}

	var events []model.EventRecord
	var skipped []report.Diagnostic
	for _, b := range buckets {
		evs, diags, err := s.bucketEvents(ctx, b, source, from, to)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, evs...)
		skipped = append(skipped, diags...)
	}
	return events, skipped, nil
}

func (s *Store) bucketEvents(ctx context.Context, b bucket, source model.Source, from, to time.Time) ([]model.EventRecord, []report.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, duration, datastr
		   FROM eventmodel
		  WHERE bucket_id = ? AND timestamp >= ? AND timestamp < ?
		  ORDER BY timestamp`,
		b.key, from.UTC().Format(timeLayout), to.UTC().Format(timeLayout))
	if err != nil {
		return nil, nil, errors.NewInternal(fmt.Errorf("query events of %s: %w", b.id, err))
	}
	defer rows.Close()

	var events []model.EventRecord
	var skipped []report.Diagnostic
	for rows.Next() {
		var (
			rowID    int64
			ts       string
			duration float64
			datastr  string
		)
		if err := rows.Scan(&rowID, &ts, &duration, &datastr); err != nil {
			return nil, nil, errors.NewInternal(err)
		}

		ev, err := normalize(source, ts, duration, datastr)
		if err != nil {
			skipped = append(skipped, report.Diagnostic{
				Source: string(source),
				Reason: err.Error(),
				Record: fmt.Sprintf("%s/%d", b.id, rowID),
			})
			continue
		}
		events = append(events, ev)
	}
	return events, skipped, rows.Err()
}

// timeLayout is how aw-server stores event timestamps.
const timeLayout = "2006-01-02 15:04:05.999999-07:00"

// timeLayouts are the accepted timestamp renderings, most common
// first. Naive timestamps are taken as UTC, matching aw-server.
var timeLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
}

// normalize turns one raw event row into an EventRecord.
func normalize(source model.Source, ts string, duration float64, datastr string) (model.EventRecord, error) {
	var stamp time.Time
	var err error
	for _, layout := range timeLayouts {
		if stamp, err = time.ParseInLocation(layout, ts, time.UTC); err == nil {
			break
		}
	}
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("malformed timestamp %q", ts)
	}
	if duration < 0 {
		return model.EventRecord{}, fmt.Errorf("negative duration %v", duration)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(datastr), &payload); err != nil {
		return model.EventRecord{}, fmt.Errorf("malformed payload: %v", err)
	}

	fields := Flatten(payload)
	switch source {
	case model.SourcePresence:
		// Watchers report {"status": "afk"|"not-afk"}; derive the
		// boolean the pipeline keys on.
		fields["afk"] = fields.Str("status") == "afk"
	}

	return model.EventRecord{
		ID:        newID(stamp),
		Source:    source,
		Timestamp: stamp.UTC(),
		Duration:  time.Duration(duration * float64(time.Second)),
		Fields:    fields,
	}, nil
}

// newID mints a ULID carrying the event timestamp, so diagnostics
// sort chronologically.
func newID(ts time.Time) string {
	return ulid.MustNew(ulid.Timestamp(ts), rand.Reader).String()
}
