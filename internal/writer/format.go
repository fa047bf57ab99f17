package writer

import (
	"fmt"
	"strconv"
	"time"
)

// FormatDate renders a ledger date as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatClock renders a wall-clock time as HH:MM. The zero time
// renders as "00:00".
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return "00:00"
	}
	return t.Format("15:04")
}

// FormatDelta renders a duration as HH:MM, e.g. 8h45m -> "08:45".
func FormatDelta(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%02d:%02d", h, m)
}

// FormatHours renders a duration as decimal hours, e.g. 8h45m -> "8.75".
func FormatHours(d time.Duration) string {
	return strconv.FormatFloat(d.Hours(), 'g', -1, 64)
}
