package util

import (
	"strings"
	"time"
)

// dateLayouts covers the calendar formats seen across vendor CSV feeds.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 02, 2006",
}

// ParseDate parses a calendar date in any of the common vendor CSV
// formats. The result is midnight UTC. Returns (t, true) if any
// layout matched.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
