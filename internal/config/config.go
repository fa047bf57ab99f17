package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dratasich/log-activity/internal/errors"
)

// OtherBucketPolicy selects how the uncategorized remainder of a day
// is reported in the activity ledger.
type OtherBucketPolicy string

const (
	// OtherSubtract reports active time minus categorized time,
	// clamped to zero.
	OtherSubtract OtherBucketPolicy = "subtract"
	// OtherList reports only the uncategorized events' own durations.
	OtherList OtherBucketPolicy = "list"
	// OtherOff omits the bucket entirely.
	OtherOff OtherBucketPolicy = "off"
)

// Config holds application configuration, loaded from a single YAML
// file and passed by value into each component. There is no
// process-wide mutable state.
type Config struct {
	// Timezone is the IANA zone used for date flooring and clock
	// formatting. Empty means UTC.
	Timezone string `yaml:"timezone"`

	// OutputDir is where ledgers are written. Empty means the
	// current directory.
	OutputDir string `yaml:"output_dir,omitempty"`

	Sources Sources `yaml:"sources"`
	Policy  Policy  `yaml:"policy"`
	Rules   []Group `yaml:"rules"`
}

// Sources configures the excluded adapter layer.
type Sources struct {
	// ActivityWatch is the path to the aw-server SQLite database.
	ActivityWatch string `yaml:"activitywatch,omitempty"`

	// Calendar is the path to an M365 calendar JSON export.
	Calendar string `yaml:"calendar,omitempty"`

	// CalendarPrivate is the category label marking private calendar
	// entries, which are dropped before the core runs.
	CalendarPrivate string `yaml:"calendar_private,omitempty"`

	// Minutes is a directory of yyyy-mm-dd[_topic].md meeting notes.
	Minutes string `yaml:"minutes,omitempty"`
}

// Policy holds the organizational working-time rules.
type Policy struct {
	// ShortPause is the idle-gap threshold below which idle time
	// still counts as active.
	ShortPause Duration `yaml:"short_pause"`

	// LunchThreshold is the active time at which the lunch allowance
	// becomes mandatory.
	LunchThreshold Duration `yaml:"lunch_threshold"`

	// LunchBreak is the lunch allowance added to the aligned window.
	LunchBreak Duration `yaml:"lunch_break"`

	// Rounding is the granule start, end, and window length are
	// rounded to.
	Rounding Duration `yaml:"rounding"`

	// CommitFloor is the minimum duration credited per distinct
	// issue/date/project group derived from git commits.
	CommitFloor Duration `yaml:"commit_floor"`

	// OvertimeLimit is the active time above which the overtime
	// violation triggers.
	OvertimeLimit Duration `yaml:"overtime_limit"`

	// RestStart / RestEnd bound the allowed daily window.
	RestStart Clock `yaml:"rest_start"`
	RestEnd   Clock `yaml:"rest_end"`

	// CoreStart / CoreEnd are the Monday-Thursday core hours;
	// FridayCoreEnd replaces CoreEnd on Fridays. Weekends carry no
	// core-hours requirement.
	CoreStart     Clock `yaml:"core_start"`
	CoreEnd       Clock `yaml:"core_end"`
	FridayCoreEnd Clock `yaml:"friday_core_end"`

	// OtherBucket selects the uncategorized-remainder policy.
	OtherBucket OtherBucketPolicy `yaml:"other_bucket"`
}

// Group is one ordered list of category rules serving a single
// classification purpose. Declaration order is the single-label
// tie-break order, which is why rules are a YAML sequence and never a
// mapping.
type Group struct {
	// Name identifies the purpose, e.g. "project-by-issue".
	Name string `yaml:"group"`

	// Rules are (label, pattern) pairs in priority order.
	Rules []Rule `yaml:"patterns"`
}

// Rule is one label with its uncompiled, case-insensitive pattern.
type Rule struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone: "UTC",
		Sources: Sources{
			CalendarPrivate: "private",
		},
		Policy: Policy{
			ShortPause:     Duration(5 * time.Minute),
			LunchThreshold: Duration(6 * time.Hour),
			LunchBreak:     Duration(30 * time.Minute),
			Rounding:       Duration(15 * time.Minute),
			CommitFloor:    Duration(15 * time.Minute),
			OvertimeLimit:  Duration(10*time.Hour + 30*time.Minute),
			RestStart:      Clock{6, 0},
			RestEnd:        Clock{19, 0},
			CoreStart:      Clock{9, 0},
			CoreEnd:        Clock{15, 0},
			FridayCoreEnd:  Clock{12, 0},
			OtherBucket:    OtherSubtract,
		},
	}
}

// Load reads configuration from path and merges it over the defaults.
// A missing file yields the defaults; a malformed file is a fatal
// CONFIG_ERROR.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.NewConfig("read config %s: %v", path, err)
	}

	overlay := &Config{}
	if err := yaml.Unmarshal(data, overlay); err != nil {
		return nil, errors.NewConfig("parse config %s: %v", path, err)
	}

	cfg := Merge(DefaultConfig(), overlay)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take
// precedence for non-zero scalars; the rule list replaces wholesale
// (merging two ordered rule lists has no sensible priority).
func Merge(base, overlay *Config) *Config {
	result := *base

	if overlay.Timezone != "" {
		result.Timezone = overlay.Timezone
	}
	if overlay.OutputDir != "" {
		result.OutputDir = overlay.OutputDir
	}
	if overlay.Sources.ActivityWatch != "" {
		result.Sources.ActivityWatch = overlay.Sources.ActivityWatch
	}
	if overlay.Sources.Calendar != "" {
		result.Sources.Calendar = overlay.Sources.Calendar
	}
	if overlay.Sources.CalendarPrivate != "" {
		result.Sources.CalendarPrivate = overlay.Sources.CalendarPrivate
	}
	if overlay.Sources.Minutes != "" {
		result.Sources.Minutes = overlay.Sources.Minutes
	}

	p := &result.Policy
	o := overlay.Policy
	if o.ShortPause != 0 {
		p.ShortPause = o.ShortPause
	}
	if o.LunchThreshold != 0 {
		p.LunchThreshold = o.LunchThreshold
	}
	if o.LunchBreak != 0 {
		p.LunchBreak = o.LunchBreak
	}
	if o.Rounding != 0 {
		p.Rounding = o.Rounding
	}
	if o.CommitFloor != 0 {
		p.CommitFloor = o.CommitFloor
	}
	if o.OvertimeLimit != 0 {
		p.OvertimeLimit = o.OvertimeLimit
	}
	if !o.RestStart.IsZero() {
		p.RestStart = o.RestStart
	}
	if !o.RestEnd.IsZero() {
		p.RestEnd = o.RestEnd
	}
	if !o.CoreStart.IsZero() {
		p.CoreStart = o.CoreStart
	}
	if !o.CoreEnd.IsZero() {
		p.CoreEnd = o.CoreEnd
	}
	if !o.FridayCoreEnd.IsZero() {
		p.FridayCoreEnd = o.FridayCoreEnd
	}
	if o.OtherBucket != "" {
		p.OtherBucket = o.OtherBucket
	}

	if overlay.Rules != nil {
		result.Rules = overlay.Rules
	}

	return &result
}

// Validate checks policy sanity. Rule patterns are compiled (and
// rejected) by the rules package, not here.
func (c *Config) Validate() error {
	switch c.Policy.OtherBucket {
	case OtherSubtract, OtherList, OtherOff:
	default:
		return errors.NewConfig("unknown other_bucket policy %q", c.Policy.OtherBucket)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Policy.Rounding <= 0 {
		return errors.NewConfig("rounding granule must be positive")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.NewConfig("unknown timezone %q", c.Timezone)
	}
	return loc, nil
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "5m" or "10h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Clock is a wall-clock time of day, unmarshaled from "HH:MM".
type Clock struct {
	Hour   int
	Minute int
}

// IsZero reports whether the clock was left unset.
func (c Clock) IsZero() bool {
	return c.Hour == 0 && c.Minute == 0
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Clock) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid clock time %q (want HH:MM)", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return fmt.Errorf("invalid clock time %q (want HH:MM)", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return fmt.Errorf("clock time %q out of range", s)
	}
	c.Hour, c.Minute = h, m
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Clock) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On anchors the clock time to day's calendar date in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}
