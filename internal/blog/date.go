package blog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownDateFormat reports a date string that matched none of the
// supported layouts. Callers log it and treat the date as absent; it never
// fails a post or a cycle.
var ErrUnknownDateFormat = errors.New("unrecognized date format")

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
}

// dateSentinels are listing-page placeholders meaning "no date available".
// They map to the zero Date without an error.
var dateSentinels = map[string]bool{
	"":             true,
	"Unknown date": true,
	"Recent":       true,
}

// Date is a calendar date in canonical ISO form, "YYYY-MM-DD". The zero
// value means the date is unknown; it is never a stand-in for the earliest
// possible date. Lexicographic order on the canonical form equals
// chronological order, so Dates compare with plain string operators.
type Date string

// IsZero reports whether the date is unknown.
func (d Date) IsZero() bool {
	return d == ""
}

// After reports whether d is strictly later than other. The zero date is
// never after anything.
func (d Date) After(other Date) bool {
	return !d.IsZero() && string(d) > string(other)
}

func (d Date) String() string {
	return string(d)
}

// DateOf converts an already-parsed timestamp to its canonical Date.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// ParseDate normalizes a scraped date string into a Date. Sentinel inputs
// ("Unknown date", "Recent", empty) yield the zero Date with no error.
// Anything else is matched against the supported layouts in order; a string
// matching none yields the zero Date and ErrUnknownDateFormat so the caller
// can log the raw value rather than guess.
func ParseDate(raw string) (Date, error) {
	s := strings.TrimSpace(raw)
	if dateSentinels[s] {
		return "", nil
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Date(t.Format("2006-01-02")), nil
		}
	}

	return "", fmt.Errorf("parse date %q: %w", raw, ErrUnknownDateFormat)
}
