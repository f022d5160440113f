package model

import (
	"fmt"
	"strings"
	"time"
)

// Date is a civil date (year, month, day) with an explicit "unknown"
// state. The zero Date represents an empty or unparseable source date.
//
// Unknown dates sort AFTER every valid date. This is load-bearing for the
// panel builder: an action whose date could not be parsed must never be
// counted as visible "as of" any snapshot, otherwise future information
// could leak into training features.
type Date struct {
	t     time.Time
	known bool
}

// dateLayouts are tried in order when parsing scraped date strings.
// ISO first; the scraper occasionally emits US-style dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"1/2/2006",
	"01/02/2006",
}

// ParseDate parses a scraped date string. Empty or unparseable input
// yields the zero (unknown) Date and NEVER an error - a single bad record
// must not abort a multi-thousand-bill batch.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t: t.Truncate(24 * time.Hour), known: true}
		}
	}
	return Date{}
}

// DateOf builds a known Date from components. Used by tests and the
// deterministic clock.
func DateOf(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), known: true}
}

// Known reports whether the date was parseable.
func (d Date) Known() bool { return d.known }

// Before reports whether d is strictly before other.
// Unknown dates sort last: unknown is never before anything except by
// comparison with another unknown (false).
func (d Date) Before(other Date) bool {
	if !d.known {
		return false
	}
	if !other.known {
		return true
	}
	return d.t.Before(other.t)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// Equal reports whether two dates are the same civil date (or both unknown).
func (d Date) Equal(other Date) bool {
	if d.known != other.known {
		return false
	}
	if !d.known {
		return true
	}
	return d.t.Equal(other.t)
}

// AddDays returns the date n days later. Adding to an unknown date yields
// an unknown date.
func (d Date) AddDays(n int) Date {
	if !d.known {
		return Date{}
	}
	return Date{t: d.t.AddDate(0, 0, n), known: true}
}

// DaysUntil returns the whole number of days from d to other.
// Either side unknown yields 0.
func (d Date) DaysUntil(other Date) int {
	if !d.known || !other.known {
		return 0
	}
	return int(other.t.Sub(d.t).Hours() / 24)
}

// String formats as ISO 8601, or "" for unknown dates.
func (d Date) String() string {
	if !d.known {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// MarshalJSON encodes the date as an ISO string, empty for unknown.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// UnmarshalJSON decodes an ISO string; empty or malformed input becomes
// the unknown Date (matching ParseDate semantics).
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	*d = ParseDate(s)
	return nil
}
