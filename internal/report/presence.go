package report

import (
	"sort"
	"time"

	"github.com/dratasich/log-activity/internal/model"
)

// DaySpan is the folded raw presence of one day: the observed window
// plus the non-idle time in it.
type DaySpan struct {
	Date     time.Time
	RawStart time.Time
	RawEnd   time.Time
	Active   time.Duration
}

// FoldPresence groups presence events by calendar day and folds each
// group into a DaySpan. RawStart is the earliest observed timestamp,
// RawEnd the latest event end. Active sums non-idle time; idle gaps
// shorter than shortPause still count as active. Days without any
// presence event produce no span.
//
// The fold is order-independent: min, max, and sum are commutative,
// so any permutation of events yields the same spans.
func FoldPresence(events []model.EventRecord, shortPause time.Duration, loc *time.Location) []DaySpan {
	byDay := make(map[time.Time]*DaySpan)

	for _, ev := range events {
		if ev.Source != model.SourcePresence {
			continue
		}
		date := ev.Date(loc)
		span, ok := byDay[date]
		if !ok {
			span = &DaySpan{Date: date, RawStart: ev.Timestamp, RawEnd: ev.End()}
			byDay[date] = span
		}
		if ev.Timestamp.Before(span.RawStart) {
			span.RawStart = ev.Timestamp
		}
		if ev.End().After(span.RawEnd) {
			span.RawEnd = ev.End()
		}

		idle := ev.Fields.Bool("afk")
		if !idle || ev.Duration < shortPause {
			// Short pauses count as active time.
			span.Active += ev.Duration
		}
	}

	spans := make([]DaySpan, 0, len(byDay))
	for _, span := range byDay {
		spans = append(spans, *span)
	}
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Date.Before(spans[j].Date)
	})
	return spans
}
