package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"longer", "abcdef", 5, "abcde"},
		{"multibyte", "héllo wörld", 4, "héll"},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}

	long := strings.Repeat("x", 600)
	assert.Len(t, *TruncatePtr(&long, MaxClickUserAgentLength), MaxClickUserAgentLength)
	assert.Nil(t, TruncatePtr(nil, 10))
}

func TestIsExpiredPtr(t *testing.T) {
	assert.False(t, IsExpiredPtr(nil))
	assert.True(t, IsExpiredPtr(ToPtr(UTCNow().Add(-time.Minute))))
	assert.False(t, IsExpiredPtr(ToPtr(UTCNow().Add(time.Hour))))
}

func TestParseDateParam(t *testing.T) {
	start, err := ParseDateParam("2025-03-04", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), start)

	end, err := ParseDateParam("2025-03-04", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 23, 59, 59, 999999999, time.UTC), end)

	ts, err := ParseDateParam("2025-03-04T10:00:00+02:00", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC), ts)

	_, err = ParseDateParam("yesterday", false)
	assert.Error(t, err)
}

func TestStartOfPeriods(t *testing.T) {
	ref := time.Date(2025, 7, 19, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC), StartOfDay(ref))
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ref))
}
