// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// IsExpiredAt reports whether t is strictly before now.
func IsExpiredAt(t time.Time, now time.Time) bool {
	return t.Before(now)
}

// IsExpiredPtr checks if the given time pointer is in the past (expired)
func IsExpiredPtr(t *time.Time) bool {
	if t == nil {
		return false
	}
	return IsExpiredAt(*t, UTCNow())
}

// TimeToUTCPtr converts a time pointer to UTC if it's not already
func TimeToUTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// StartOfDay returns midnight of t's day in UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns midnight of the first day of t's month in UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseDateParam accepts RFC3339 or YYYY-MM-DD. endOfDay moves a bare date to its last nanosecond.
func ParseDateParam(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}
