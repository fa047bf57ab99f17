// Package ops implements the operations shared by the CLI and the
// MCP server: run the report pipeline over a date range, and classify
// ad-hoc text against the configured rules.
package ops

import (
	"context"
	"log/slog"
	"time"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/errors"
	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/reader/aw"
	"github.com/dratasich/log-activity/internal/reader/calendar"
	"github.com/dratasich/log-activity/internal/reader/minutes"
	"github.com/dratasich/log-activity/internal/report"
	"github.com/dratasich/log-activity/internal/rules"
)

// DefaultRange returns the default reporting range: from the first of
// the current month (inclusive) until tomorrow (exclusive), in loc.
func DefaultRange(now time.Time, loc *time.Location) (from, to time.Time) {
	local := now.In(loc)
	from = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	to = model.DateOf(local, loc).AddDate(0, 0, 1)
	return from, to
}

// Run executes one batch over [from, to): compile the rule sets, read
// every configured source, and run the core pipeline. Reader skip
// diagnostics are merged into the result; a missing configured source
// or a malformed rule pattern aborts before any event is processed.
func Run(ctx context.Context, cfg *config.Config, from, to time.Time) (report.Result, error) {
	loc, err := cfg.Location()
	if err != nil {
		return report.Result{}, err
	}
	sets, err := rules.CompileAll(cfg.Rules)
	if err != nil {
		return report.Result{}, err
	}

	var events []model.EventRecord
	var skipped []report.Diagnostic

	if cfg.Sources.ActivityWatch != "" {
		store, err := aw.Open(cfg.Sources.ActivityWatch)
		if err != nil {
			return report.Result{}, err
		}
		defer store.Close()
		for _, prefix := range []string{aw.ClientAFK, aw.ClientWindow, aw.ClientWeb, aw.ClientGit} {
			evs, diags, err := store.Events(ctx, prefix, from, to)
			if err != nil {
				return report.Result{}, err
			}
			events = append(events, evs...)
			skipped = append(skipped, diags...)
		}
	}

	if cfg.Sources.Calendar != "" {
		evs, diags, err := calendar.Read(cfg.Sources.Calendar, cfg.Sources.CalendarPrivate, from, to)
		if err != nil {
			return report.Result{}, err
		}
		events = append(events, evs...)
		skipped = append(skipped, diags...)
	}

	if cfg.Sources.Minutes != "" {
		evs, diags, err := minutes.Read(cfg.Sources.Minutes, from, to, loc)
		if err != nil {
			return report.Result{}, err
		}
		events = append(events, evs...)
		skipped = append(skipped, diags...)
	}

	slog.Info("sources read", "events", len(events), "skipped", len(skipped),
		"from", from.Format("2006-01-02"), "to", to.Format("2006-01-02"))

	result := report.Run(report.Input{
		Events:   events,
		Rules:    sets,
		Policy:   cfg.Policy,
		Location: loc,
	})
	result.Skipped = append(skipped, result.Skipped...)
	return result, nil
}

// ClassifyInput contains parameters for the Classify operation.
type ClassifyInput struct {
	Text  string
	Group string
	All   bool
}

// ClassifyOutput contains the result of the Classify operation.
type ClassifyOutput struct {
	Labels  []string `json:"labels"`
	Matched bool     `json:"matched"`
}

// Classify runs a single text through one configured rule group.
func Classify(cfg *config.Config, input ClassifyInput) (*ClassifyOutput, error) {
	if input.Text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}
	sets, err := rules.CompileAll(cfg.Rules)
	if err != nil {
		return nil, err
	}
	set := sets.Get(input.Group)
	if set == nil {
		return nil, errors.NewNotFound("rule group " + input.Group)
	}

	out := &ClassifyOutput{Labels: []string{}}
	if input.All {
		out.Labels = append(out.Labels, set.ClassifyAll(input.Text)...)
		out.Matched = len(out.Labels) > 0
	} else if label, ok := set.Classify(input.Text); ok {
		out.Labels = append(out.Labels, label)
		out.Matched = true
	}
	return out, nil
}
