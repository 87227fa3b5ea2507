package service

import (
	"time"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
)

// Per-repository API call estimates used by the delay planner: one call for
// the commit probe, five for metadata/README/CODEOWNERS/tags plus buffer,
// three more when commit history is paged for labor hours. A likely-cached
// repository costs only the probe
const (
	callsProbe = 1
	callsFetch = 5
	callsLabor = 3
)

// Pacing bundles the submission-delay knobs
type Pacing struct {
	SafetyFactor     float64
	MinDelay         time.Duration
	MaxDelay         time.Duration
	PeekThreshold    time.Duration
	CacheHitDelay    time.Duration
	DynamicThreshold int
	DynamicScale     float64
	DynamicMax       time.Duration
	PostCallDelay    time.Duration
}

// EstimateCalls projects the API call count for a target: fresh repositories
// pay the full fetch budget, likely-cached ones only the probe
func EstimateCalls(total, likelyCached int, laborEnabled bool) int {
	if total <= 0 {
		return 0
	}
	if likelyCached > total {
		likelyCached = total
	}
	if likelyCached < 0 {
		likelyCached = 0
	}
	perRepo := callsProbe + callsFetch
	if laborEnabled {
		perRepo += callsLabor
	}
	return (total-likelyCached)*perRepo + likelyCached*callsProbe
}

// InterSubmissionDelay spreads the estimated calls across the provider's
// remaining quota window. nil status or a zero estimate plans blind and
// returns MaxDelay; an exhausted quota waits out the reset window (up to
// twice MaxDelay), or MinDelay when the window already lapsed
func (p Pacing) InterSubmissionDelay(status *scm.RateStatus, estimatedCalls, workers int, now time.Time) time.Duration {
	if workers < 1 {
		workers = 1
	}
	if status == nil || estimatedCalls <= 0 {
		return p.MaxDelay
	}

	permissible := float64(status.Remaining) * p.SafetyFactor
	window := status.SecondsToReset(now)

	if permissible <= 0 {
		if window <= 0 {
			return p.MinDelay
		}
		d := seconds(window/float64(workers)) + p.MinDelay
		return minDur(d, 2*p.MaxDelay)
	}

	// batches approximates how many submission rounds the pool needs
	batches := float64(estimatedCalls) / float64(workers)
	var delay float64
	if float64(estimatedCalls) <= permissible {
		delay = window / batches
	} else {
		if window <= 0 {
			return p.MinDelay
		}
		rate := permissible / window
		delay = (float64(estimatedCalls) / rate) / batches
	}
	return clampDur(seconds(delay), p.MinDelay, p.MaxDelay)
}

// DynamicPostCallDelay scales the per-platform post-call delay with target
// size and worker parallelism. Targets at or under the threshold keep the
// base delay; larger ones grow it by scale per threshold-of-excess. The
// worker factor 1+0.2(W-1) compensates for parallel arrival, capped at
// DynamicMax times min(2, factor)
func (p Pacing) DynamicPostCallDelay(numItems, workers int) time.Duration {
	if workers < 1 {
		workers = 1
	}
	threshold := p.DynamicThreshold
	if threshold < 1 {
		threshold = 1
	}

	d := float64(p.PostCallDelay)
	if numItems > threshold {
		excess := float64(numItems-threshold) / float64(threshold)
		d *= 1 + excess*p.DynamicScale
	}

	factor := 1 + 0.2*float64(workers-1)
	d *= factor

	ceiling := float64(p.DynamicMax) * minF(2, factor)
	if d > ceiling {
		d = ceiling
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

func seconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

func clampDur(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if hi > 0 && d > hi {
		return hi
	}
	return d
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
