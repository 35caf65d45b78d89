package ufwlog

import (
	"strings"
	"time"
)

const syslogLayout = "Jan 2 15:04:05"

// parseTimestamp reads an RFC3339 first token or a classic syslog prefix.
// Syslog stamps carry no year, so it comes from arrival; a stamp that lands
// more than a day in the future belongs to the previous year. Anything else
// falls back to arrival.
func parseTimestamp(text string, arrival time.Time) time.Time {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return arrival
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, fields[0]); err == nil {
			return t
		}
	}

	if len(fields) >= 3 {
		stamp := strings.Join(fields[:3], " ")
		if t, err := time.ParseInLocation(syslogLayout, stamp, arrival.Location()); err == nil {
			t = time.Date(arrival.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, arrival.Location())
			if t.Sub(arrival) > 24*time.Hour {
				t = t.AddDate(-1, 0, 0)
			}
			return t
		}
	}

	return arrival
}
