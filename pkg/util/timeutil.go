package util

import "time"

// Clock yields the current time. Services keep one so tests can pin it.
type Clock func() time.Time

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Millis truncates t to millisecond precision in UTC, the finest unit every engine round-trips.
func Millis(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
