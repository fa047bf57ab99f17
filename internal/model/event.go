package model

import (
	"fmt"
	"time"
)

// Source identifies the watcher or adapter an event came from.
type Source string

const (
	SourcePresence  Source = "presence"
	SourceEditor    Source = "editor"
	SourceWeb       Source = "web"
	SourceGitCommit Source = "git-commit"
	SourceCalendar  Source = "calendar"
)

// KnownSources lists all valid source values.
var KnownSources = []Source{
	SourcePresence, SourceEditor, SourceWeb, SourceGitCommit, SourceCalendar,
}

// Valid reports whether s is one of the closed set of sources.
func (s Source) Valid() bool {
	for _, k := range KnownSources {
		if s == k {
			return true
		}
	}
	return false
}

// EventRecord is the common shape every adapter normalizes into.
// Records are constructed once per ingestion pass and never mutated;
// the pipeline treats them as values.
type EventRecord struct {
	// ID uniquely identifies the record. Adapters pass through a source
	// id when one exists and mint a ULID otherwise.
	ID string

	// Source is the adapter category the record came from.
	Source Source

	// Timestamp is the event start instant, normalized to UTC.
	Timestamp time.Time

	// Duration is the event length. Never negative; adapters drop
	// records that would parse to a negative span.
	Duration time.Duration

	// Fields holds source-specific payload values keyed by flattened
	// name (e.g. "title", "url", "project", "issue", "origin").
	// Unknown keys are preserved but never interpreted.
	Fields Fields
}

// Fields is an opaque bag of source-specific payload values.
type Fields map[string]any

// Str returns the field value as a string, or "" when absent or not
// string-typed. Absent fields are never an error.
func (f Fields) Str(key string) string {
	if f == nil {
		return ""
	}
	s, _ := f[key].(string)
	return s
}

// Bool returns the field value as a bool, false when absent.
func (f Fields) Bool(key string) bool {
	if f == nil {
		return false
	}
	b, _ := f[key].(bool)
	return b
}

// Strs returns the field value as a string slice. Scalar strings come
// back as a one-element slice so callers can explode list-or-scalar
// payloads (git issue references) uniformly.
func (f Fields) Strs(key string) []string {
	if f == nil {
		return nil
	}
	switch v := f[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Date returns the calendar day of the record in loc, truncated to
// midnight. All date bucketing in the pipeline goes through DateOf so
// the flooring convention cannot drift between the two pipelines.
func (e EventRecord) Date(loc *time.Location) time.Time {
	return DateOf(e.Timestamp, loc)
}

// End returns the instant the event finished.
func (e EventRecord) End() time.Time {
	return e.Timestamp.Add(e.Duration)
}

func (e EventRecord) String() string {
	return fmt.Sprintf("%s[%s] %s +%s", e.Source, e.ID, e.Timestamp.Format(time.RFC3339), e.Duration)
}

// DateOf floors ts to midnight of its calendar day in loc.
// This is the single normalization point for the derived date attribute.
func DateOf(ts time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
