// Package datetime provides date and time utility functions.
package datetime

import (
	"time"
)

// SnapshotLayout is the operator-facing format of snapshot load times.
const SnapshotLayout = "15:04 02/01/2006"

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatSnapshotTime formats a load time as "HH:MM dd/mm/YYYY".
func FormatSnapshotTime(t time.Time) string {
	return t.Format(SnapshotLayout)
}

// Age returns how long ago a snapshot was loaded relative to now, truncated
// to whole minutes. Future times yield zero.
func Age(loadedAt, now time.Time) time.Duration {
	if now.Before(loadedAt) {
		return 0
	}
	return now.Sub(loadedAt).Truncate(time.Minute)
}
