package model

import (
	"testing"
	"time"
)

func TestSourceValid(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   bool
	}{
		{name: "presence", source: SourcePresence, want: true},
		{name: "editor", source: SourceEditor, want: true},
		{name: "web", source: SourceWeb, want: true},
		{name: "git-commit", source: SourceGitCommit, want: true},
		{name: "calendar", source: SourceCalendar, want: true},
		{name: "unknown", source: Source("window"), want: false},
		{name: "empty", source: Source(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.source.Valid(); got != tt.want {
				t.Errorf("Source(%q).Valid() = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestDateOf(t *testing.T) {
	vienna, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	tests := []struct {
		name string
		ts   time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			name: "utc midday stays on its day",
			ts:   time.Date(2024, 3, 4, 12, 30, 0, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "late utc evening crosses into next local day",
			ts:   time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC),
			loc:  vienna,
			want: time.Date(2024, 3, 5, 0, 0, 0, 0, vienna),
		},
		{
			name: "nil location defaults to utc",
			ts:   time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC),
			loc:  nil,
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateOf(tt.ts, tt.loc)
			if !got.Equal(tt.want) {
				t.Errorf("DateOf(%v) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}

func TestEventRecordEnd(t *testing.T) {
	ev := EventRecord{
		Timestamp: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Duration:  90 * time.Minute,
	}
	want := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)
	if got := ev.End(); !got.Equal(want) {
		t.Errorf("End() = %v, want %v", got, want)
	}
}

func TestFieldsStr(t *testing.T) {
	f := Fields{"title": "standup", "count": 3}
	if got := f.Str("title"); got != "standup" {
		t.Errorf("Str(title) = %q, want %q", got, "standup")
	}
	if got := f.Str("count"); got != "" {
		t.Errorf("Str(count) = %q, want empty for non-string value", got)
	}
	if got := f.Str("missing"); got != "" {
		t.Errorf("Str(missing) = %q, want empty", got)
	}
	var nilFields Fields
	if got := nilFields.Str("title"); got != "" {
		t.Errorf("nil Fields Str = %q, want empty", got)
	}
}

func TestFieldsBool(t *testing.T) {
	f := Fields{"afk": true, "title": "x"}
	if !f.Bool("afk") {
		t.Errorf("Bool(afk) = false, want true")
	}
	if f.Bool("title") {
		t.Errorf("Bool(title) = true, want false for non-bool value")
	}
	if f.Bool("missing") {
		t.Errorf("Bool(missing) = true, want false")
	}
}

func TestFieldsStrs(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "string slice", value: []string{"A-1", "A-2"}, want: []string{"A-1", "A-2"}},
		{name: "any slice from json", value: []any{"A-1", "A-2"}, want: []string{"A-1", "A-2"}},
		{name: "scalar string", value: "A-1", want: []string{"A-1"}},
		{name: "empty scalar", value: "", want: nil},
		{name: "non-string", value: 42, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Fields{"issues": tt.value}
			got := f.Strs("issues")
			if len(got) != len(tt.want) {
				t.Fatalf("Strs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Strs()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWorkingDayWeekend(t *testing.T) {
	saturday := WorkingDay{Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}
	monday := WorkingDay{Date: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)}
	if !saturday.Weekend() {
		t.Errorf("Weekend() = false for Saturday, want true")
	}
	if monday.Weekend() {
		t.Errorf("Weekend() = true for Monday, want false")
	}
}

func TestWorkingDayWindowLength(t *testing.T) {
	d := WorkingDay{
		AlignedStart: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		AlignedEnd:   time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC),
	}
	if got := d.WindowLength(); got != 8*time.Hour+30*time.Minute {
		t.Errorf("WindowLength() = %v, want 8h30m", got)
	}
}
