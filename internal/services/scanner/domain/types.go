package domain

import "time"

// TargetResult summarizes one scanned target for the end-of-run report
type TargetResult struct {
	Platform   string
	Target     string
	Enumerated int
	Kept       int
	Skipped    map[string]int
	Processed  int
	CacheHits  int
	Empty      int
	Errored    int
	Output     string
	Duration   time.Duration
}
