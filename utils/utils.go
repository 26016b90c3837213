// Package utils provides utility functions for the application.
package utils

import "unicode/utf8"

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Truncate cuts s to at most max characters without splitting a multi-byte rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// TruncatePtr applies Truncate to a non-nil pointer and returns a new pointer.
func TruncatePtr(s *string, max int) *string {
	if s == nil {
		return nil
	}
	t := Truncate(*s, max)
	return &t
}
