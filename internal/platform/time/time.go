// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// ISO renders t as an ISO-8601 UTC timestamp, or "" for the zero time
func ISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// lenientLayouts covers the timestamp shapes the platforms and prior catalog
// files are known to emit
var lenientLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseLenient parses s against the known layouts, reporting ok=false when
// none match. Layouts without a zone are taken as UTC
func ParseLenient(s string) (time.Time, bool) {
	for _, layout := range lenientLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
