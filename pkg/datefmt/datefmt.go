// Package datefmt handles calendar dates stored as YYYY-MM-DD strings.
// Dates are never converted through a time zone; display formatting works
// on the string components.
package datefmt

import (
	"fmt"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// Valid reports whether s is a real calendar date in YYYY-MM-DD form
func Valid(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Validate returns an error naming field when s is not a valid date
func Validate(field, s string) error {
	if !Valid(s) {
		return fmt.Errorf("%s must be a date in YYYY-MM-DD format, got %q", field, s)
	}
	return nil
}

// Display renders YYYY-MM-DD (optionally followed by a time part) as
// MM-DD-YYYY. Blank input renders blank; anything else is returned as is.
func Display(s string) string {
	if s == "" {
		return ""
	}
	date, _, _ := strings.Cut(s, "T")
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return s
	}
	return parts[1] + "-" + parts[2] + "-" + parts[0]
}

// Today returns the local calendar date of now
func Today(now time.Time) string {
	return now.Format(Layout)
}
