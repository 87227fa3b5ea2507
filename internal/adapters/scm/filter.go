package scm

import (
	"time"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
)

// Skip reasons surfaced by EnumPolicy.Admit for logging and the run summary
const (
	SkipFork          = "fork"
	SkipPrivateStale  = "private repository inactive before filter date"
	SkipCreatedBefore = "created before cutoff date"
)

// EnumPolicy holds the enumeration-time filters. Zero time values disable
// the corresponding filter
type EnumPolicy struct {
	// PrivateFilterDate drops private/internal repositories whose last
	// activity predates it (UTC midnight of the configured day)
	PrivateFilterDate time.Time

	// CreatedAfter drops repositories created before it, any visibility
	CreatedAfter time.Time
}

// Admit reports whether a stub should be scanned; on false the second value
// names the filter that rejected it
func (p EnumPolicy) Admit(s Stub) (bool, string) {
	if s.Fork {
		return false, SkipFork
	}
	if !p.CreatedAfter.IsZero() && !s.CreatedAt.IsZero() && s.CreatedAt.Before(p.CreatedAfter) {
		return false, SkipCreatedBefore
	}
	if !p.PrivateFilterDate.IsZero() && catalog.IsPrivateVisibility(s.Visibility) {
		if !s.LastActivityAt.IsZero() && s.LastActivityAt.Before(p.PrivateFilterDate) {
			return false, SkipPrivateStale
		}
	}
	return true, ""
}

// Apply partitions stubs into admitted and a count of rejections per reason
func (p EnumPolicy) Apply(stubs []Stub) (kept []Stub, skipped map[string]int) {
	skipped = map[string]int{}
	for _, s := range stubs {
		ok, why := p.Admit(s)
		if !ok {
			skipped[why]++
			continue
		}
		kept = append(kept, s)
	}
	return kept, skipped
}
