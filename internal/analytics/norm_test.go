package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		def  float64
		want float64
	}{
		{"plain", "42.5", 0, 42.5},
		{"currency", "$150,000", 0, 150000},
		{"whitespace", "  7 ", 0, 7},
		{"empty", "", 9, 9},
		{"garbage", "n/a", 9, 9},
		{"negative", "-3.25", 0, -3.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseNumber(tt.in, tt.def), 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"date only", "2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2026-03-15T10:30:00Z", time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"space separated", "2026-03-15 10:30:00", time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"slashes", "2026/03/15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"empty", "", fallback},
		{"garbage", "next tuesday", fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.in, fallback))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, DaysBetween(now, now.AddDate(0, 0, -10)))
	assert.Equal(t, 0, DaysBetween(now, now))
	assert.Equal(t, -5, DaysBetween(now, now.AddDate(0, 0, 5)))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 100))
	assert.Equal(t, 100.0, Clamp(250, 0, 100))
	assert.Equal(t, 55.0, Clamp(55, 0, 100))
}

func TestTake(t *testing.T) {
	items := []string{"a", "b", "c", "d"}

	assert.Len(t, take(items, 2), 2)
	assert.Equal(t, items, take(items, 10))
	assert.Empty(t, take(items, 0))
}

func TestAppendUnique(t *testing.T) {
	list := appendUnique(nil, "x")
	list = appendUnique(list, "y")
	list = appendUnique(list, "x")

	assert.Equal(t, []string{"x", "y"}, list)
}
