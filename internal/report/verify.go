package report

import (
	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/model"
)

// Violation labels emitted by the verifier.
const (
	ViolationOvertime  = "overtime"
	ViolationCoreHours = "core-hours-violation"
	ViolationRestStart = "rest-time-violation (start)"
	ViolationRestEnd   = "rest-time-violation (end)"
	ViolationWeekend   = "weekend-activity"
	ViolationWindow    = "window-consistency"
)

// Verifier checks an aligned day against organizational policy.
type Verifier struct {
	policy  config.Policy
	aligner Aligner
}

// NewVerifier creates a Verifier for the given policy.
func NewVerifier(policy config.Policy) Verifier {
	return Verifier{policy: policy, aligner: NewAligner(policy)}
}

// Verify returns the policy violations of a working day as an ordered,
// de-duplicated label list. Checks are independent: every triggered
// label is appended, there is no short-circuiting. An empty result
// means fully compliant.
func (v Verifier) Verify(day model.WorkingDay) []string {
	var notes []string

	// Active time is checked pre-alignment and pre-lunch.
	if day.Active > v.policy.OvertimeLimit.Std() {
		notes = appendUnique(notes, ViolationOvertime)
	}

	if coreStart, coreEnd, hasCore := v.aligner.coreWindow(day.Date); hasCore {
		if day.AlignedStart.After(coreStart) || day.AlignedEnd.Before(coreEnd) {
			notes = appendUnique(notes, ViolationCoreHours)
		}
	}

	if day.AlignedStart.Before(v.policy.RestStart.On(day.Date)) {
		notes = appendUnique(notes, ViolationRestStart)
	}
	if day.AlignedEnd.After(v.policy.RestEnd.On(day.Date)) {
		notes = appendUnique(notes, ViolationRestEnd)
	}

	if day.Weekend() && day.Active > 0 {
		notes = appendUnique(notes, ViolationWeekend)
	}

	// Sanity oracle: the aligned window must reproduce the sizing
	// duration. Never triggers when Align is implemented correctly.
	if sized, _ := v.aligner.WindowLength(day.Active); day.WindowLength() != sized {
		notes = appendUnique(notes, ViolationWindow)
	}

	return notes
}

// appendUnique appends s to list unless already present, preserving
// first-seen order.
func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
