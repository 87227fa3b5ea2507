package retry

import (
	"context"
	stderrs "errors"
	"testing"
	"time"

	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	kit "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/testkit"
)

// noSleep swaps the sleep seam to record waits without sleeping
func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	kit.Serial(t)
	var waits []time.Duration
	kit.Swap(t, &sleepFn, func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	})
	// deterministic jitter: always the midpoint
	kit.Swap(t, &randFn, func(n int64) int64 { return n / 2 })
	return &waits
}

func TestExecute_SuccessFirstTry(t *testing.T) {
	waits := noSleep(t)
	calls := 0
	err := Execute(context.Background(), Default(), "op", func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 || len(*waits) != 0 {
		t.Fatalf("Execute = %v, calls = %d, waits = %v", err, calls, *waits)
	}
}

func TestExecute_NonRateLimitPropagatesImmediately(t *testing.T) {
	waits := noSleep(t)
	calls := 0
	boom := perr.NotFoundf("no such repo")
	err := Execute(context.Background(), Default(), "op", func(context.Context) error {
		calls++
		return boom
	})
	if !perr.IsNotFound(err) || calls != 1 || len(*waits) != 0 {
		t.Fatalf("Execute = %v, calls = %d, waits = %v", err, calls, *waits)
	}
}

func TestExecute_RateLimitRetriesWithBackoff(t *testing.T) {
	waits := noSleep(t)
	p := Policy{MaxRetries: 4, InitialDelay: time.Second, Backoff: 2.0, MaxDelay: 900 * time.Second}
	calls := 0
	err := Execute(context.Background(), p, "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return perr.RateLimitedf("slow down")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("Execute = %v, calls = %d", err, calls)
	}
	// midpoint jitter keeps the wait equal to the computed backoff
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*waits) != len(want) {
		t.Fatalf("waits = %v, want %v", *waits, want)
	}
	for i := range want {
		if (*waits)[i] != want[i] {
			t.Fatalf("waits[%d] = %v, want %v", i, (*waits)[i], want[i])
		}
	}
}

func TestExecute_RetryAfterHintWins(t *testing.T) {
	waits := noSleep(t)
	p := Policy{MaxRetries: 2, InitialDelay: time.Second, Backoff: 2.0, MaxDelay: 900 * time.Second}
	calls := 0
	err := Execute(context.Background(), p, "op", func(context.Context) error {
		calls++
		if calls == 1 {
			return perr.WithRetryAfter(perr.RateLimitedf("x"), 7*time.Second)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("Execute = %v, calls = %d", err, calls)
	}
	if len(*waits) != 1 || (*waits)[0] != 7*time.Second {
		t.Fatalf("waits = %v, want [7s]", *waits)
	}
}

func TestExecute_HintCappedAtMaxDelay(t *testing.T) {
	waits := noSleep(t)
	p := Policy{MaxRetries: 2, InitialDelay: time.Second, Backoff: 2.0, MaxDelay: 5 * time.Second}
	calls := 0
	_ = Execute(context.Background(), p, "op", func(context.Context) error {
		calls++
		if calls == 1 {
			return perr.WithRetryAfter(perr.RateLimitedf("x"), time.Hour)
		}
		return nil
	})
	if len(*waits) != 1 || (*waits)[0] != 5*time.Second {
		t.Fatalf("waits = %v, want [5s]", *waits)
	}
}

func TestExecute_ExhaustionReturnsLast(t *testing.T) {
	_ = noSleep(t)
	p := Policy{MaxRetries: 3, InitialDelay: time.Millisecond, Backoff: 2.0, MaxDelay: time.Second}
	calls := 0
	err := Execute(context.Background(), p, "op", func(context.Context) error {
		calls++
		return perr.RateLimitedf("always")
	})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if !perr.IsRateLimited(err) {
		t.Fatalf("Execute error = %v, want rate limited", err)
	}
}

func TestExecute_CanceledContextStopsSleep(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &sleepFn, func(ctx context.Context, _ time.Duration) error { return context.Canceled })
	err := Execute(context.Background(), Default(), "op", func(context.Context) error {
		return perr.RateLimitedf("x")
	})
	if !stderrs.Is(err, context.Canceled) {
		t.Fatalf("Execute = %v, want context.Canceled", err)
	}
}

func TestBackoffAt(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{10, 30 * time.Second}, // capped
	}
	for _, c := range cases {
		if got := backoffAt(time.Second, 2.0, c.attempt, 30*time.Second); got != c.want {
			t.Fatalf("backoffAt(attempt=%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

func TestSleepCtx_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Minute); !stderrs.Is(err, context.Canceled) {
		t.Fatalf("sleepCtx = %v, want context.Canceled", err)
	}
	if err := sleepCtx(context.Background(), 0); err != nil {
		t.Fatalf("sleepCtx(0) = %v, want nil", err)
	}
}
