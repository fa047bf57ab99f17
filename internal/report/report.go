// Package report implements the event categorization, aggregation,
// and working-hours alignment engine. Everything here is a pure
// function over immutable inputs; all I/O lives in the reader and
// writer packages.
package report

import (
	"log/slog"
	"time"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/rules"
)

// Diagnostic records one skipped event. Record-level problems never
// abort the batch; they are collected and reported at the end.
type Diagnostic struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
	Record string `json:"record,omitempty"`
}

// Input bundles everything one batch run operates on.
type Input struct {
	Events   []model.EventRecord
	Rules    *rules.Sets
	Policy   config.Policy
	Location *time.Location
}

// Result holds both derived ledgers plus the skip diagnostics of the
// run. Re-running on the same input yields an identical Result.
type Result struct {
	Activities  []model.ActivityRecord
	WorkingDays []model.WorkingDay
	Skipped     []Diagnostic
}

// Text columns classified per source.
var classifyColumns = map[model.Source][]string{
	model.SourceEditor: {"project", "file", "title"},
	model.SourceWeb:    {"title", "url"},
}

// Run executes the full pipeline: categorize and aggregate activity
// events into the activity ledger, and fold presence into aligned,
// verified working days. The two pipelines share only the event model
// and the date-flooring convention.
func Run(in Input) Result {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	events, skipped := validate(in.Events)

	var presence, gitCommits []model.EventRecord
	var contribs []Contribution

	editorRules := in.Rules.Get(rules.GroupProjectByEditor)
	webRules := in.Rules.Get(rules.GroupProjectByWebsite)
	issueRules := in.Rules.Get(rules.GroupProjectByIssue)
	repoRules := in.Rules.Get(rules.GroupProjectByRepo)
	meetingRules := in.Rules.Get(rules.GroupProjectByMeeting)

	for _, ev := range events {
		switch ev.Source {
		case model.SourcePresence:
			presence = append(presence, ev)
		case model.SourceGitCommit:
			gitCommits = append(gitCommits, ev)
		case model.SourceEditor:
			project, _ := editorRules.Classify(rules.Text(ev, classifyColumns[ev.Source]))
			contribs = append(contribs, Contribution{
				Date:     ev.Date(loc),
				Project:  project,
				Duration: ev.Duration,
			})
		case model.SourceWeb:
			project, _ := webRules.Classify(rules.Text(ev, classifyColumns[ev.Source]))
			contribs = append(contribs, Contribution{
				Date:     ev.Date(loc),
				Project:  project,
				Duration: ev.Duration,
			})
		case model.SourceCalendar:
			subject := ev.Fields.Str("subject")
			desc := ""
			if subject != "" {
				desc = "meeting: " + subject
			}
			// Calendar categories map to projects directly; entries
			// without one (meeting minutes) fall back to the meeting
			// rules over the subject.
			project := ev.Fields.Str("project")
			if project == "" {
				project, _ = meetingRules.Classify(subject)
			}
			contribs = append(contribs, Contribution{
				Date:        ev.Date(loc),
				Project:     project,
				Duration:    ev.Duration,
				Description: desc,
			})
		}
	}

	contribs = append(contribs, ExplodeCommits(
		gitCommits, issueRules, repoRules, in.Policy.CommitFloor.Std(), loc)...)

	days := FoldPresence(presence, in.Policy.ShortPause.Std(), loc)

	aligner := NewAligner(in.Policy)
	verifier := NewVerifier(in.Policy)
	workingDays := make([]model.WorkingDay, 0, len(days))
	for _, span := range days {
		start, end, lunch := aligner.Align(span.RawStart.In(loc), span.RawEnd.In(loc), span.Active)
		day := model.WorkingDay{
			Date:          span.Date,
			RawStart:      span.RawStart,
			RawEnd:        span.RawEnd,
			Active:        span.Active,
			LunchIncluded: lunch,
			AlignedStart:  start,
			AlignedEnd:    end,
		}
		day.Violations = verifier.Verify(day)
		workingDays = append(workingDays, day)
	}

	activities := Aggregate(AggregateInput{
		Contributions: contribs,
		Days:          days,
		OtherBucket:   in.Policy.OtherBucket,
	})

	slog.Info("report computed",
		"events", len(events),
		"skipped", len(skipped),
		"activities", len(activities),
		"working_days", len(workingDays))

	return Result{
		Activities:  activities,
		WorkingDays: workingDays,
		Skipped:     skipped,
	}
}

// requiredFields lists the per-source payload keys a record cannot be
// processed without.
var requiredFields = map[model.Source][]string{
	model.SourcePresence:  {"afk"},
	model.SourceGitCommit: {"origin"},
	model.SourceCalendar:  {"subject"},
}

// validate drops records the core cannot process: unknown source,
// zero timestamp, negative duration, or a missing required field.
// Dropped records become diagnostics; surviving records are returned
// unchanged.
func validate(events []model.EventRecord) ([]model.EventRecord, []Diagnostic) {
	valid := make([]model.EventRecord, 0, len(events))
	var skipped []Diagnostic

	skip := func(ev model.EventRecord, reason string) {
		skipped = append(skipped, Diagnostic{
			Source: string(ev.Source),
			Reason: reason,
			Record: ev.ID,
		})
		slog.Debug("skipping record", "source", ev.Source, "reason", reason, "id", ev.ID)
	}

events:
	for _, ev := range events {
		if !ev.Source.Valid() {
			skip(ev, "unknown source")
			continue
		}
		if ev.Timestamp.IsZero() {
			skip(ev, "malformed timestamp")
			continue
		}
		if ev.Duration < 0 {
			skip(ev, "negative duration")
			continue
		}
		for _, key := range requiredFields[ev.Source] {
			if _, ok := ev.Fields[key]; !ok {
				skip(ev, "missing field "+key)
				continue events
			}
		}
		valid = append(valid, ev)
	}
	return valid, skipped
}
