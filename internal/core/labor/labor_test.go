package labor

import (
	"testing"
	"time"
)

func at(day int) time.Time {
	return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
}

func TestEstimateAggregatesPerAuthor(t *testing.T) {
	t.Parallel()

	commits := []Commit{
		{AuthorName: "Ada", AuthorEmail: "ada@cdc.gov", AuthoredAt: at(3)},
		{AuthorName: "Ada", AuthorEmail: "ADA@cdc.gov", AuthoredAt: at(1)}, // same person, cased email
		{AuthorName: "Ada", AuthorEmail: "ada@cdc.gov", AuthoredAt: at(9)},
		{AuthorName: "Bob", AuthorEmail: "bob@cdc.gov", AuthoredAt: at(5)},
	}

	total, byAuthor := Estimate(commits, 0.5)
	if total != 2 { // 4 commits * 0.5 = 2.0
		t.Fatalf("total = %v, want 2", total)
	}
	if len(byAuthor) != 2 {
		t.Fatalf("authors = %d, want 2", len(byAuthor))
	}

	ada := byAuthor[AuthorKey{Name: "Ada", Email: "ada@cdc.gov"}]
	if ada.Commits != 3 || ada.EstimatedHours != 1.5 {
		t.Fatalf("ada = %+v", ada)
	}
	if !ada.FirstCommit.Equal(at(1)) || !ada.LastCommit.Equal(at(9)) {
		t.Fatalf("ada first/last = %v/%v", ada.FirstCommit, ada.LastCommit)
	}
}

func TestEstimateRoundsTotal(t *testing.T) {
	t.Parallel()

	commits := []Commit{
		{AuthorName: "a", AuthorEmail: "a@x", AuthoredAt: at(1)},
		{AuthorName: "b", AuthorEmail: "b@x", AuthoredAt: at(1)},
		{AuthorName: "c", AuthorEmail: "c@x", AuthoredAt: at(1)},
	}
	total, _ := Estimate(commits, 0.5) // 1.5 rounds to 2
	if total != 2 {
		t.Fatalf("total = %v, want 2", total)
	}
}

func TestEstimateEdgeCases(t *testing.T) {
	t.Parallel()

	if total, by := Estimate(nil, 0.5); total != 0 || len(by) != 0 {
		t.Fatalf("Estimate(nil) = (%v, %v)", total, by)
	}
	// negative rate clamps to zero rather than emitting negative hours
	total, _ := Estimate([]Commit{{AuthorName: "a", AuthorEmail: "a@x", AuthoredAt: at(1)}}, -1)
	if total != 0 {
		t.Fatalf("total = %v, want 0", total)
	}
}

func TestAuthorsOrdering(t *testing.T) {
	t.Parallel()

	commits := []Commit{
		{AuthorName: "Solo", AuthorEmail: "s@x", AuthoredAt: at(1)},
		{AuthorName: "Busy", AuthorEmail: "b@x", AuthoredAt: at(1)},
		{AuthorName: "Busy", AuthorEmail: "b@x", AuthoredAt: at(2)},
	}
	_, byAuthor := Estimate(commits, 1)
	keys := Authors(byAuthor)
	if len(keys) != 2 || keys[0].Name != "Busy" || keys[1].Name != "Solo" {
		t.Fatalf("Authors = %v", keys)
	}
}
