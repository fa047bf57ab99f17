package report

import (
	"strings"
	"testing"
	"time"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/model"
	"github.com/dratasich/log-activity/internal/rules"
)

func compileSet(t *testing.T, name string, pairs ...string) *rules.Set {
	t.Helper()
	group := config.Group{Name: name}
	for i := 0; i+1 < len(pairs); i += 2 {
		group.Rules = append(group.Rules, config.Rule{Label: pairs[i], Pattern: pairs[i+1]})
	}
	set, err := rules.Compile(group)
	if err != nil {
		t.Fatalf("Compile(%s): %v", name, err)
	}
	return set
}

func TestAggregateMergesGroups(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	contribs := []Contribution{
		{Date: day, Project: "apollo", Duration: time.Hour, Description: "main.go"},
		{Date: day, Project: "apollo", Duration: 30 * time.Minute, Description: "review"},
		{Date: day, Project: "apollo", Duration: 15 * time.Minute, Description: "main.go"}, // dup desc
		{Date: day, Project: "billing", Duration: 45 * time.Minute},
	}

	records := Aggregate(AggregateInput{Contributions: contribs, OtherBucket: config.OtherOff})
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	apollo := records[0]
	if apollo.Project != "apollo" {
		t.Fatalf("records[0].Project = %q, want apollo (sorted)", apollo.Project)
	}
	if apollo.Duration != time.Hour+45*time.Minute {
		t.Errorf("apollo Duration = %v, want 1h45m", apollo.Duration)
	}
	if len(apollo.Description) != 2 || apollo.Description[0] != "main.go" || apollo.Description[1] != "review" {
		t.Errorf("apollo Description = %v, want deduplicated first-seen order", apollo.Description)
	}
	if records[1].Project != "billing" || records[1].Duration != 45*time.Minute {
		t.Errorf("records[1] = %+v, want billing 45m", records[1])
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	contribs := []Contribution{
		{Date: day, Project: "apollo", Duration: time.Hour},
		{Date: day, Project: "billing", Duration: 30 * time.Minute},
		{Date: day.AddDate(0, 0, 1), Project: "apollo", Duration: 2 * time.Hour},
		{Date: day, Project: "", Duration: 20 * time.Minute},
	}
	reversed := make([]Contribution, len(contribs))
	for i, c := range contribs {
		reversed[len(contribs)-1-i] = c
	}

	a := Aggregate(AggregateInput{Contributions: contribs, OtherBucket: config.OtherList})
	b := Aggregate(AggregateInput{Contributions: reversed, OtherBucket: config.OtherList})
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Date.Equal(b[i].Date) || a[i].Project != b[i].Project || a[i].Duration != b[i].Duration {
			t.Errorf("record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestAggregateOtherBucket(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	contribs := []Contribution{
		{Date: day, Project: "apollo", Duration: 5 * time.Hour},
		{Date: day, Project: "", Duration: 20 * time.Minute, Description: "unmatched browsing"},
	}
	days := []DaySpan{{Date: day, Active: 8 * time.Hour}}

	t.Run("subtract reports the remainder", func(t *testing.T) {
		records := Aggregate(AggregateInput{Contributions: contribs, Days: days, OtherBucket: config.OtherSubtract})
		other := findRecord(records, day, model.OtherProject)
		if other == nil {
			t.Fatalf("no %q record in %+v", model.OtherProject, records)
		}
		if other.Duration != 3*time.Hour {
			t.Errorf("other Duration = %v, want 3h (8h active - 5h categorized)", other.Duration)
		}
	})

	t.Run("subtract clamps at zero", func(t *testing.T) {
		over := []Contribution{{Date: day, Project: "apollo", Duration: 9 * time.Hour}}
		records := Aggregate(AggregateInput{Contributions: over, Days: days, OtherBucket: config.OtherSubtract})
		if other := findRecord(records, day, model.OtherProject); other != nil {
			t.Errorf("got other record %+v, want none when categorized exceeds active", *other)
		}
	})

	t.Run("list reports uncategorized durations", func(t *testing.T) {
		records := Aggregate(AggregateInput{Contributions: contribs, Days: days, OtherBucket: config.OtherList})
		other := findRecord(records, day, model.OtherProject)
		if other == nil {
			t.Fatalf("no %q record in %+v", model.OtherProject, records)
		}
		if other.Duration != 20*time.Minute {
			t.Errorf("other Duration = %v, want 20m", other.Duration)
		}
		if len(other.Description) != 1 || other.Description[0] != "unmatched browsing" {
			t.Errorf("other Description = %v", other.Description)
		}
	})

	t.Run("off drops uncategorized time", func(t *testing.T) {
		records := Aggregate(AggregateInput{Contributions: contribs, Days: days, OtherBucket: config.OtherOff})
		if other := findRecord(records, day, model.OtherProject); other != nil {
			t.Errorf("got other record %+v, want none", *other)
		}
	})
}

func TestAggregateSkipsDaysWithoutPresence(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	contribs := []Contribution{
		{Date: monday, Project: "apollo", Duration: time.Hour},
		{Date: tuesday, Project: "apollo", Duration: time.Hour},
	}
	days := []DaySpan{{Date: monday, Active: 8 * time.Hour}}

	records := Aggregate(AggregateInput{Contributions: contribs, Days: days, OtherBucket: config.OtherOff})
	for _, r := range records {
		if r.Date.Equal(tuesday) {
			t.Errorf("got record for a day without presence: %+v", r)
		}
	}
	if findRecord(records, monday, "apollo") == nil {
		t.Errorf("monday record missing from %+v", records)
	}
}

func TestAggregateNoDayFilterWithoutPresence(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	contribs := []Contribution{{Date: day, Project: "apollo", Duration: time.Hour}}

	records := Aggregate(AggregateInput{Contributions: contribs, OtherBucket: config.OtherOff})
	if len(records) != 1 {
		t.Errorf("got %d records, want 1 when no presence data exists at all", len(records))
	}
}

func findRecord(records []model.ActivityRecord, date time.Time, project string) *model.ActivityRecord {
	for i := range records {
		if records[i].Date.Equal(date) && records[i].Project == project {
			return &records[i]
		}
	}
	return nil
}

func commitEvent(ts time.Time, origin, summary string, issues any) model.EventRecord {
	fields := model.Fields{"origin": origin, "summary": summary, "hook": "post-commit"}
	if issues != nil {
		fields["issues"] = issues
	}
	return model.EventRecord{
		Source:    model.SourceGitCommit,
		Timestamp: ts,
		Fields:    fields,
	}
}

func TestExplodeCommits(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	issueRules := compileSet(t, rules.GroupProjectByIssue, "apollo", `AP-\d+`, "billing", `BILL-\d+`)
	repoRules := compileSet(t, rules.GroupProjectByRepo, "infra", `tooling`)
	floor := 15 * time.Minute

	t.Run("multi-issue commit contributes per issue", func(t *testing.T) {
		events := []model.EventRecord{
			commitEvent(day.Add(10*time.Hour), "git@host:team/app.git", "fix rounding", []string{"AP-1", "BILL-2"}),
		}
		contribs := ExplodeCommits(events, issueRules, repoRules, floor, time.UTC)
		if len(contribs) != 2 {
			t.Fatalf("got %d contributions, want 2", len(contribs))
		}
		if contribs[0].Project != "apollo" || contribs[1].Project != "billing" {
			t.Errorf("projects = %q, %q; want apollo, billing", contribs[0].Project, contribs[1].Project)
		}
		for _, c := range contribs {
			if c.Duration != floor {
				t.Errorf("%s Duration = %v, want floored to %v", c.Project, c.Duration, floor)
			}
			if !strings.Contains(c.Description, "app: fix rounding") {
				t.Errorf("%s Description = %q, want repo and summary", c.Project, c.Description)
			}
		}
		if !strings.HasPrefix(contribs[0].Description, "AP-1 (") {
			t.Errorf("Description = %q, want issue prefix", contribs[0].Description)
		}
	})

	t.Run("duplicate hook firings count once", func(t *testing.T) {
		ev := commitEvent(day.Add(10*time.Hour), "git@host:team/app.git", "fix rounding", "AP-1")
		contribs := ExplodeCommits([]model.EventRecord{ev, ev}, issueRules, repoRules, floor, time.UTC)
		if len(contribs) != 1 {
			t.Fatalf("got %d contributions, want 1", len(contribs))
		}
		if contribs[0].Duration != floor {
			t.Errorf("Duration = %v, want %v", contribs[0].Duration, floor)
		}
	})

	t.Run("falls back to repo rules", func(t *testing.T) {
		events := []model.EventRecord{
			commitEvent(day.Add(10*time.Hour), "git@host:team/tooling.git", "bump deps", nil),
		}
		contribs := ExplodeCommits(events, issueRules, repoRules, floor, time.UTC)
		if len(contribs) != 1 || contribs[0].Project != "infra" {
			t.Fatalf("contribs = %+v, want one infra contribution", contribs)
		}
	})

	t.Run("unmatched commit lands in the other bucket", func(t *testing.T) {
		events := []model.EventRecord{
			commitEvent(day.Add(10*time.Hour), "git@host:personal/scratch.git", "wip", nil),
		}
		contribs := ExplodeCommits(events, issueRules, repoRules, floor, time.UTC)
		if len(contribs) != 1 || contribs[0].Project != model.OtherProject {
			t.Fatalf("contribs = %+v, want one %q contribution", contribs, model.OtherProject)
		}
	})

	t.Run("non post-commit hooks are ignored", func(t *testing.T) {
		ev := commitEvent(day.Add(10*time.Hour), "git@host:team/app.git", "fix", "AP-1")
		ev.Fields["hook"] = "pre-push"
		if contribs := ExplodeCommits([]model.EventRecord{ev}, issueRules, repoRules, floor, time.UTC); len(contribs) != 0 {
			t.Errorf("got %d contributions from pre-push hook, want 0", len(contribs))
		}
	})
}

func TestRepoName(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{origin: "git@host:team/tool.git", want: "tool"},
		{origin: "https://host/team/tool.git", want: "tool"},
		{origin: "https://host/team/tool", want: "tool"},
		{origin: "", want: ""},
	}
	for _, tt := range tests {
		if got := repoName(tt.origin); got != tt.want {
			t.Errorf("repoName(%q) = %q, want %q", tt.origin, got, tt.want)
		}
	}
}
