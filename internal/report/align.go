package report

import (
	"log/slog"
	"time"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/model"
)

// Aligner computes an organizationally valid start/end window from
// raw presence data. It is a deterministic function of its inputs and
// the policy; it carries no hidden state.
type Aligner struct {
	policy config.Policy
}

// NewAligner creates an Aligner for the given policy.
func NewAligner(policy config.Policy) Aligner {
	return Aligner{policy: policy}
}

// WindowLength returns the aligned window size for an active duration:
// lunch allowance added once active time reaches the lunch threshold,
// then rounded to the policy granule. The returned bool reports
// whether lunch was included.
func (a Aligner) WindowLength(active time.Duration) (time.Duration, bool) {
	lunch := false
	window := active
	if active >= a.policy.LunchThreshold.Std() {
		lunch = true
		window += a.policy.LunchBreak.Std()
	}
	return RoundDuration(window, a.policy.Rounding.Std()), lunch
}

// coreWindow returns the core-hours requirement for the day of start.
// ok is false on weekends, which carry no requirement.
func (a Aligner) coreWindow(start time.Time) (coreStart, coreEnd time.Time, ok bool) {
	switch start.Weekday() {
	case time.Saturday, time.Sunday:
		return time.Time{}, time.Time{}, false
	case time.Friday:
		return a.policy.CoreStart.On(start), a.policy.FridayCoreEnd.On(start), true
	default:
		return a.policy.CoreStart.On(start), a.policy.CoreEnd.On(start), true
	}
}

// Align converts the observed raw window into the policy-compliant
// one. The invariant alignedEnd - alignedStart == WindowLength(active)
// holds for every branch.
func (a Aligner) Align(rawStart, rawEnd time.Time, active time.Duration) (alignedStart, alignedEnd time.Time, lunchIncluded bool) {
	granule := a.policy.Rounding.Std()
	start := roundTime(rawStart, granule)
	end := roundTime(rawEnd, granule)

	window, lunch := a.WindowLength(active)
	slog.Debug("align",
		"raw_start", rawStart, "raw_end", rawEnd,
		"rounded_start", start, "rounded_end", end,
		"window", window, "lunch", lunch)

	coreStart, coreEnd, hasCore := a.coreWindow(start)
	switch {
	case !hasCore:
		// Weekend: no core-hours requirement, keep the observed start.
		return start, start.Add(window), lunch
	case !start.After(coreStart) && !start.Add(window).Before(coreEnd):
		// Presence already spans core hours.
		return start, start.Add(window), lunch
	case window < coreEnd.Sub(coreStart):
		// Not enough active time to cover core hours; the verifier
		// flags the shortfall.
		return coreStart, coreStart.Add(window), lunch
	case start.After(coreStart):
		// Worked enough but started late: shift the window left.
		return coreStart, coreStart.Add(window), lunch
	default:
		// Anomaly fallback: anchor the window to end at coreEnd.
		return coreEnd.Add(-window), coreEnd, lunch
	}
}

// roundTime rounds t to the nearest granule boundary of its day, ties
// toward the later boundary.
func roundTime(t time.Time, granule time.Duration) time.Time {
	if granule <= 0 {
		return t
	}
	shifted := t.Add(granule / 2)
	midnight := model.DateOf(shifted, t.Location())
	elapsed := shifted.Sub(midnight)
	return midnight.Add(elapsed - elapsed%granule)
}

// RoundDuration rounds d to the nearest granule, ties rounding up.
// Writers use the same rounding when serializing ledger durations.
func RoundDuration(d, granule time.Duration) time.Duration {
	if granule <= 0 {
		return d
	}
	return (d + granule/2) / granule * granule
}
