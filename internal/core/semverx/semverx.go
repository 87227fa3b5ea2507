// Package semverx picks a repository version out of its tag list
package semverx

import (
	"strings"

	"github.com/blang/semver/v4"
)

// prefixes commonly glued onto release tags, stripped before parsing.
// "jenkins-<job>-" style prefixes are handled separately
var tagPrefixes = []string{"v", "release-", "Release-"}

// Normalize parses s tolerantly and renders it back in canonical semver form.
// The second return is false when s does not parse as a version
func Normalize(s string) (string, bool) {
	v, err := semver.ParseTolerant(strip(s))
	if err != nil {
		return "", false
	}
	return v.String(), true
}

// Largest returns the best version among tags: release versions beat
// pre-releases, then highest semver wins. Tags that do not parse are ignored.
// The second return is false when no tag parses
func Largest(tags []string) (string, bool) {
	var bestRelease, bestPre *semver.Version
	for _, t := range tags {
		v, err := semver.ParseTolerant(strip(t))
		if err != nil {
			continue
		}
		if len(v.Pre) == 0 {
			if bestRelease == nil || v.GT(*bestRelease) {
				c := v
				bestRelease = &c
			}
			continue
		}
		if bestPre == nil || v.GT(*bestPre) {
			c := v
			bestPre = &c
		}
	}
	if bestRelease != nil {
		return bestRelease.String(), true
	}
	if bestPre != nil {
		return bestPre.String(), true
	}
	return "", false
}

// strip removes known tag prefixes such as v1.2.3, release-1.2.3,
// and jenkins-style jenkins-<job>-1.2.3
func strip(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range tagPrefixes {
		if strings.HasPrefix(s, p) && len(s) > len(p) {
			rest := s[len(p):]
			// "v" only counts as a prefix when a digit follows (avoid eating "very-old")
			if p == "v" && (rest[0] < '0' || rest[0] > '9') {
				continue
			}
			return rest
		}
	}
	if strings.HasPrefix(s, "jenkins-") {
		// jenkins-<job-name>-<version>: keep everything after the last dash
		// that is followed by a digit
		if i := lastVersionDash(s); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}

func lastVersionDash(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		if s[i] == '-' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			return i
		}
	}
	return -1
}
