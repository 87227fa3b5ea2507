// Package strings provides small string helpers shared across the scanner
package strings

import (
	"regexp"
	"sort"
	std "strings"
)

// MustString returns s if it has non whitespace content otherwise panics
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// EmptyToNil returns empty string if s is all whitespace, otherwise returns s
func EmptyToNil(s string) string {
	if std.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Ptr returns a pointer to s, or nil if s is empty
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" if ps is nil, else *ps.
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}

// UniqueSortedLower lowercases and trims each value, drops blanks and
// duplicates, and returns the rest sorted. Used for contact email lists
func UniqueSortedLower(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		v = std.ToLower(std.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Sanitize renders a free-form name safe for use as a filename fragment:
// runs of unsafe characters collapse to one underscore, edges are trimmed
func Sanitize(s string) string {
	out := unsafeChars.ReplaceAllString(std.TrimSpace(s), "_")
	return std.Trim(out, "_")
}
