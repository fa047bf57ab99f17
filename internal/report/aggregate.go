package report

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/rules"
)

// Contribution is one categorized event's share of the activity
// ledger: a duration and a description fragment for a (date, project)
// group. An empty Project marks an uncategorized contribution, whose
// fate the other-bucket policy decides.
type Contribution struct {
	Date        time.Time
	Project     string
	Duration    time.Duration
	Description string
}

// AggregateInput bundles the aggregation inputs.
type AggregateInput struct {
	Contributions []Contribution

	// Days supplies per-day active totals for the subtract policy.
	Days []DaySpan

	// OtherBucket selects how uncategorized time is reported.
	OtherBucket config.OtherBucketPolicy
}

type groupKey struct {
	date    time.Time
	project string
}

type group struct {
	duration time.Duration
	desc     []string
}

// Aggregate folds contributions into at most one ActivityRecord per
// (date, project). Duration sums are commutative and description
// de-duplication is set-based, so any permutation of the input
// multiset yields the same ledger. Records come back sorted by
// (date, project, duration) ascending, ready for serialization.
func Aggregate(in AggregateInput) []model.ActivityRecord {
	groups := make(map[groupKey]*group)

	fold := func(date time.Time, project string, d time.Duration, desc string) {
		key := groupKey{date: date, project: project}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.duration += d
		if desc != "" {
			g.desc = appendUnique(g.desc, desc)
		}
	}

	for _, c := range in.Contributions {
		switch {
		case c.Project != "":
			fold(c.Date, c.Project, c.Duration, c.Description)
		case in.OtherBucket == config.OtherList:
			fold(c.Date, model.OtherProject, c.Duration, c.Description)
		default:
			// subtract: the remainder computation below accounts for
			// this time; off: dropped.
		}
	}

	if in.OtherBucket == config.OtherSubtract {
		for _, day := range in.Days {
			var categorized time.Duration
			for key, g := range groups {
				if key.date.Equal(day.Date) && key.project != model.OtherProject {
					categorized += g.duration
				}
			}
			// Sources overlap and under-report, so categorized time may
			// exceed the day's active total; clamp instead of going
			// negative.
			other := day.Active - categorized
			if other < 0 {
				other = 0
			}
			key := groupKey{date: day.Date, project: model.OtherProject}
			switch g, ok := groups[key]; {
			case ok:
				// The remainder replaces whatever landed under the
				// sentinel; descriptions (commit summaries) survive.
				g.duration = other
				if other == 0 && len(g.desc) == 0 {
					delete(groups, key)
				}
			case other > 0:
				groups[key] = &group{duration: other}
			}
		}
	}

	records := make([]model.ActivityRecord, 0, len(groups))
	for key, g := range groups {
		// When presence data exists, a day without any observed
		// presence produces no ledger rows at all.
		if len(in.Days) > 0 && !hasDay(in.Days, key.date) {
			continue
		}
		records = append(records, model.ActivityRecord{
			Date:        key.date,
			Project:     key.project,
			Duration:    g.duration,
			Description: g.desc,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		return a.Duration < b.Duration
	})
	return records
}

// hasDay reports whether date has an observed presence span.
func hasDay(days []DaySpan, date time.Time) bool {
	for _, d := range days {
		if d.Date.Equal(date) {
			return true
		}
	}
	return false
}

type commitKey struct {
	date    time.Time
	project string
	issue   string
}

type commitGroup struct {
	duration  time.Duration
	summaries []string
}

// ExplodeCommits turns git post-commit events into contributions.
// A commit referencing several issues contributes once per issue,
// each carrying the commit summary. Attribution tries the issue rules
// first, then the repository rules over the commit origin; a commit
// that matches neither lands under the "other" sentinel. Each
// distinct issue/date/project group is floored to the configured
// minimum so point-in-time commits never yield zero-duration entries.
func ExplodeCommits(events []model.EventRecord, issueRules, repoRules *rules.Set, floor time.Duration, loc *time.Location) []Contribution {
	groups := make(map[commitKey]*commitGroup)
	seen := make(map[string]bool)

	for _, ev := range events {
		if ev.Source != model.SourceGitCommit {
			continue
		}
		if hook := ev.Fields.Str("hook"); hook != "" && hook != "post-commit" {
			continue
		}
		origin := ev.Fields.Str("origin")
		summary := ev.Fields.Str("summary")
		repo := repoName(origin)

		issues := ev.Fields.Strs("issues")
		if len(issues) == 0 {
			issues = []string{""}
		}
		for _, issue := range issues {
			// The same commit can fire from several hooks; count it once.
			dup := origin + "\x00" + issue + "\x00" + summary
			if seen[dup] {
				continue
			}
			seen[dup] = true

			project, ok := issueRules.Classify(issue)
			if issue == "" || !ok {
				project, ok = repoRules.Classify(origin)
			}
			if !ok {
				project = model.OtherProject
			}

			key := commitKey{date: ev.Date(loc), project: project, issue: issue}
			g, exists := groups[key]
			if !exists {
				g = &commitGroup{}
				groups[key] = g
			}
			g.duration += ev.Duration
			if summary != "" {
				g.summaries = appendUnique(g.summaries, repo+": "+summary)
			}
		}
	}

	keys := make([]commitKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if a.project != b.project {
			return a.project < b.project
		}
		return a.issue < b.issue
	})

	contribs := make([]Contribution, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		duration := g.duration
		if duration < floor {
			duration = floor
		}
		desc := strings.Join(g.summaries, "; ")
		if key.issue != "" {
			desc = fmt.Sprintf("%s (%s)", key.issue, desc)
		}
		contribs = append(contribs, Contribution{
			Date:        key.date,
			Project:     key.project,
			Duration:    duration,
			Description: desc,
		})
	}
	return contribs
}

// repoName extracts a short repository name from a git origin URL or
// path, e.g. "git@host:team/tool.git" -> "tool".
func repoName(origin string) string {
	if origin == "" {
		return ""
	}
	base := path.Base(strings.ReplaceAll(origin, ":", "/"))
	return strings.TrimSuffix(base, ".git")
}
