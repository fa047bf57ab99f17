package model

import "time"

// OtherProject is the sentinel bucket for time that matched no
// category rule.
const OtherProject = "other"

// ActivityRecord is one activity-ledger row: what was done for a
// project on a day. Final ledgers contain at most one record per
// (date, project).
type ActivityRecord struct {
	// Date is the floored calendar day (see DateOf).
	Date time.Time

	// Project is the category label, or OtherProject.
	Project string

	// Duration is the summed time of all contributing events.
	// Never negative.
	Duration time.Duration

	// Description holds distinct short fragments in first-seen order.
	// Serialization joins them with "; ".
	Description []string
}

// WorkingDay is one working-time-ledger row: the observed and the
// policy-aligned window of a day.
type WorkingDay struct {
	// Date is the floored calendar day.
	Date time.Time

	// RawStart is the earliest observed presence timestamp.
	RawStart time.Time

	// RawEnd is the latest observed presence end (timestamp + duration).
	RawEnd time.Time

	// Active is the non-idle presence time of the day, with idle gaps
	// below the short-pause threshold counted as active.
	Active time.Duration

	// LunchIncluded reports whether the lunch allowance was folded
	// into the aligned window.
	LunchIncluded bool

	// AlignedStart and AlignedEnd form the policy-compliant window.
	AlignedStart time.Time
	AlignedEnd   time.Time

	// Violations holds distinct policy violation labels in the order
	// they were detected. Empty means fully compliant.
	Violations []string
}

// WindowLength returns the length of the aligned window.
func (d WorkingDay) WindowLength() time.Duration {
	return d.AlignedEnd.Sub(d.AlignedStart)
}

// Weekend reports whether the day falls on Saturday or Sunday.
func (d WorkingDay) Weekend() bool {
	wd := d.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
