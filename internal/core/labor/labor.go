// Package labor estimates repository labor hours from commit history
package labor

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Commit is one commit-history entry as the platform adapters report it
type Commit struct {
	AuthorName  string
	AuthorEmail string
	AuthoredAt  time.Time
}

// AuthorKey identifies one contributor; name and email together because
// platforms frequently report the same person under several emails
type AuthorKey struct {
	Name  string
	Email string
}

// AuthorStat aggregates one contributor's activity
type AuthorStat struct {
	Commits        int
	FirstCommit    time.Time
	LastCommit     time.Time
	EstimatedHours float64
}

// Estimate aggregates commits per author at hoursPerCommit each and returns
// the rounded repository total. Empty input yields zero
func Estimate(commits []Commit, hoursPerCommit float64) (float64, map[AuthorKey]AuthorStat) {
	byAuthor := make(map[AuthorKey]AuthorStat)
	if hoursPerCommit < 0 {
		hoursPerCommit = 0
	}
	for _, c := range commits {
		k := AuthorKey{
			Name:  strings.TrimSpace(c.AuthorName),
			Email: strings.ToLower(strings.TrimSpace(c.AuthorEmail)),
		}
		st := byAuthor[k]
		st.Commits++
		if st.FirstCommit.IsZero() || c.AuthoredAt.Before(st.FirstCommit) {
			st.FirstCommit = c.AuthoredAt
		}
		if c.AuthoredAt.After(st.LastCommit) {
			st.LastCommit = c.AuthoredAt
		}
		st.EstimatedHours = float64(st.Commits) * hoursPerCommit
		byAuthor[k] = st
	}

	var total float64
	for _, st := range byAuthor {
		total += st.EstimatedHours
	}
	return math.Round(total), byAuthor
}

// Authors returns the author keys sorted by commit count descending, then
// name; handy for deterministic logging and tests
func Authors(byAuthor map[AuthorKey]AuthorStat) []AuthorKey {
	out := make([]AuthorKey, 0, len(byAuthor))
	for k := range byAuthor {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := byAuthor[out[i]], byAuthor[out[j]]
		if a.Commits != b.Commits {
			return a.Commits > b.Commits
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Email < out[j].Email
	})
	return out
}
