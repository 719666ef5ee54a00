// Package schedule computes and formats "next contact" dates.
package schedule

import (
	"time"

	"github.com/starford/mannaz/internal/contact"
)

// stampLayouts are the accepted input timestamp formats, tried in order.
var stampLayouts = []string{
	contact.StampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Next advances lastContacted by the named frequency using the wall clock
// for the time-of-day. See NextAt.
func Next(lastContacted, frequency string) (string, bool) {
	return NextAt(lastContacted, frequency, time.Now())
}

// NextAt returns the next contact date as a YYYY-MM-DDTHH:mm local-time
// stamp, or false when either input is empty or unrecognised.
//
// weekly adds 7 days; monthly, quarterly, and yearly add calendar months or
// years with time.AddDate normalisation (Jan 31 + 1 month lands in early
// March, not at the end of February).
//
// The hour and minute of the result come from now, not from lastContacted.
// This is inherited behaviour that callers depend on; do not "fix" it by
// carrying the input's time-of-day.
func NextAt(lastContacted, frequency string, now time.Time) (string, bool) {
	if lastContacted == "" || frequency == "" {
		return "", false
	}
	t, ok := parseStamp(lastContacted)
	if !ok {
		return "", false
	}

	var next time.Time
	switch frequency {
	case contact.FreqWeekly:
		next = t.AddDate(0, 0, 7)
	case contact.FreqMonthly:
		next = t.AddDate(0, 1, 0)
	case contact.FreqQuarterly:
		next = t.AddDate(0, 3, 0)
	case contact.FreqYearly:
		next = t.AddDate(1, 0, 0)
	default:
		return "", false
	}

	next = time.Date(next.Year(), next.Month(), next.Day(),
		now.Hour(), now.Minute(), 0, 0, time.Local)
	return next.Format(contact.StampLayout), true
}

// parseStamp parses value in local time against the accepted layouts.
func parseStamp(value string) (time.Time, bool) {
	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDisplay renders a stored timestamp for list display: unparsable
// values pass through unchanged, midnight-local values render as a bare
// date, everything else as YYYY-MM-DDTHH:mm.
func FormatDisplay(value string) string {
	t, ok := parseStamp(value)
	if !ok {
		return value
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(contact.StampLayout)
}
