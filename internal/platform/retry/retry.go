// Package retry executes platform API calls with bounded, rate-aware retries
package retry

import (
	"context"
	"math/rand"
	"time"

	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

// Policy bounds the retry loop
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Backoff      float64
	MaxDelay     time.Duration
}

// Default mirrors the runtime env defaults (RETRY_* vars)
func Default() Policy {
	return Policy{
		MaxRetries:   5,
		InitialDelay: time.Second,
		Backoff:      2.0,
		MaxDelay:     900 * time.Second,
	}
}

// seams for tests
var (
	sleepFn = sleepCtx
	randFn  = rand.Int63n
)

// Execute runs call, retrying only when the error is a rate-limit signal.
// The wait per attempt is the server-provided Retry-After hint when carried,
// otherwise InitialDelay*Backoff^attempt, capped at MaxDelay, with +/-10% jitter.
// All other errors propagate immediately
func Execute(ctx context.Context, p Policy, op string, call func(ctx context.Context) error) error {
	attempts := max(p.MaxRetries, 1)
	base := p.InitialDelay
	if base <= 0 {
		base = time.Second
	}
	factor := p.Backoff
	if factor < 1 {
		factor = 2.0
	}

	var last error
	for i := 0; i < attempts; i++ {
		err := call(ctx)
		if err == nil {
			return nil
		}
		last = err

		if !perr.IsRateLimited(err) {
			return last
		}
		if i == attempts-1 {
			break
		}

		wait := backoffAt(base, factor, i, p.MaxDelay)
		if hint, ok := perr.RetryAfterOf(err); ok {
			wait = min(hint, p.MaxDelay)
		}
		wait = jitter(wait)

		logger.C(ctx).Warn().
			Str("op", op).
			Int("attempt", i+1).
			Dur("wait", wait).
			Msg("rate limited, backing off")

		if se := sleepFn(ctx, wait); se != nil {
			return se
		}
	}
	return last
}

// backoffAt computes InitialDelay*Backoff^attempt capped at maxDelay
func backoffAt(base time.Duration, factor float64, attempt int, maxDelay time.Duration) time.Duration {
	d := float64(base)
	for i := 0; i < attempt; i++ {
		d *= factor
		if maxDelay > 0 && d >= float64(maxDelay) {
			return maxDelay
		}
	}
	w := time.Duration(d)
	if maxDelay > 0 && w > maxDelay {
		w = maxDelay
	}
	return w
}

// jitter spreads a wait by +/-10%
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	span := int64(d) / 5 // 20% span centered on d
	if span <= 0 {
		return d
	}
	return d - time.Duration(span/2) + time.Duration(randFn(span))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
