// Package rules implements the category rule engine: ordered,
// case-insensitive pattern lists that assign project and app-class
// labels to event text.
package rules

import (
	"regexp"
	"strings"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/errors"
	"github.com/dratasich/log-activity/internal/model"
)

// Well-known rule group purposes. Groups beyond these are allowed;
// the pipeline only looks up the ones it needs.
const (
	GroupProjectByEditor  = "project-by-editor"
	GroupProjectByRepo    = "project-by-repo"
	GroupProjectByIssue   = "project-by-issue"
	GroupProjectByWebsite = "project-by-website"
	GroupProjectByMeeting = "project-by-meeting"
	GroupAppClass         = "app-class"
)

// Rule is one compiled (label, pattern) pair.
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
}

// Set is an ordered, immutable rule list for a single classification
// purpose. Declaration order is the single-label tie-break order; the
// order lives in a slice, never a map, so classification cannot
// depend on map iteration.
type Set struct {
	name  string
	rules []Rule
}

// Compile builds a Set from an uncompiled group. Patterns compile
// case-insensitively; a malformed pattern or duplicate label is a
// fatal CONFIG_ERROR, so Classify itself can never fail.
func Compile(group config.Group) (*Set, error) {
	set := &Set{name: group.Name, rules: make([]Rule, 0, len(group.Rules))}
	seen := make(map[string]bool, len(group.Rules))
	for _, r := range group.Rules {
		if r.Label == "" {
			return nil, errors.NewConfig("rule group %q: empty label", group.Name)
		}
		if seen[r.Label] {
			return nil, errors.NewConfig("rule group %q: duplicate label %q", group.Name, r.Label)
		}
		seen[r.Label] = true
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, errors.NewConfig("rule group %q, label %q: bad pattern: %v", group.Name, r.Label, err)
		}
		set.rules = append(set.rules, Rule{Label: r.Label, Pattern: re})
	}
	return set, nil
}

// Name returns the group purpose this set serves.
func (s *Set) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules returns the rules in declaration order.
func (s *Set) Rules() []Rule {
	if s == nil {
		return nil
	}
	return s.rules
}

// Classify returns the label of the first rule whose pattern matches
// anywhere in text, in declaration order. ok is false when no rule
// matches. Pure: same text and same set always yield the same label.
func (s *Set) Classify(text string) (label string, ok bool) {
	if s == nil {
		return "", false
	}
	for _, r := range s.rules {
		if r.Pattern.MatchString(text) {
			return r.Label, true
		}
	}
	return "", false
}

// ClassifyAll returns the labels of all matching rules. Labels are
// unique by construction, so the result is a set; it is returned in
// declaration order for stable display.
func (s *Set) ClassifyAll(text string) []string {
	if s == nil {
		return nil
	}
	var labels []string
	for _, r := range s.rules {
		if r.Pattern.MatchString(text) {
			labels = append(labels, r.Label)
		}
	}
	return labels
}

// Sets holds all compiled rule groups, keyed by purpose, with the
// declared group order preserved.
type Sets struct {
	names  []string
	byName map[string]*Set
}

// CompileAll compiles every group in declaration order. The first
// malformed group aborts with a CONFIG_ERROR before any event is
// processed.
func CompileAll(groups []config.Group) (*Sets, error) {
	sets := &Sets{byName: make(map[string]*Set, len(groups))}
	for _, g := range groups {
		if _, dup := sets.byName[g.Name]; dup {
			return nil, errors.NewConfig("duplicate rule group %q", g.Name)
		}
		set, err := Compile(g)
		if err != nil {
			return nil, err
		}
		sets.names = append(sets.names, g.Name)
		sets.byName[g.Name] = set
	}
	return sets, nil
}

// Get returns the set for a purpose, or nil when the config declares
// no such group. A nil set classifies nothing: *Set methods accept a
// nil receiver so callers need no group-existence branches.
func (s *Sets) Get(name string) *Set {
	if s == nil {
		return nil
	}
	return s.byName[name]
}

// Names returns the group purposes in declaration order.
func (s *Sets) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

// Text joins the designated fields of an event with single spaces.
// Absent or empty fields are skipped silently.
func Text(ev model.EventRecord, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		if v := ev.Fields.Str(col); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
