package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing user-entered CRM dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseNumber parses a user-entered numeric field, tolerating currency
// symbols, thousands separators, and surrounding whitespace. Returns def when
// the value is absent or unparseable.
func ParseNumber(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// ParseDate parses an ISO-8601 date or timestamp string. Returns fallback on
// any parse failure; it never returns an error because CRM dates are
// user-entered and inconsistently formatted.
func ParseDate(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// DaysBetween returns the whole number of days from date to now, negative
// when date is in the future.
func DaysBetween(now, date time.Time) int {
	return int(now.Sub(date).Hours() / 24)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// take truncates a list to at most n items. All capped report lists go
// through here so the truncation contract lives in one place.
func take[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// appendUnique appends s unless already present, preserving
// first-encountered order.
func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// containsFold reports whether substr appears in s, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// round1 rounds to 1 decimal place, round2 to 2. Used only at report
// boundaries; intermediate accumulation stays exact.
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
