package scm

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
)

func noSleep(t *testing.T) {
	t.Helper()
	prev := fetchSleep
	fetchSleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	t.Cleanup(func() { fetchSleep = prev })
}

func TestFetchFirstHitOnSecondPath(t *testing.T) {
	noSleep(t)
	var tried []string
	got, err := FetchFirst(context.Background(), FetchOptions{}, []string{"README.md", "README.rst"},
		func(_ context.Context, path string) (Content, error) {
			tried = append(tried, path)
			if path == "README.rst" {
				return Content{Text: "hello", HTMLURL: "https://x/readme.rst"}, nil
			}
			return Content{}, perr.New(perr.ErrorCodeNotFound, "no file")
		})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !got.Found || got.Text != "hello" || got.HTMLURL != "https://x/readme.rst" {
		t.Fatalf("content = %+v", got)
	}
	if len(tried) != 2 {
		t.Fatalf("tried = %v", tried)
	}
}

func TestFetchFirstAllMissing(t *testing.T) {
	noSleep(t)
	got, err := FetchFirst(context.Background(), FetchOptions{}, []string{"a", "b", "c"},
		func(context.Context, string) (Content, error) {
			return Content{}, perr.New(perr.ErrorCodeNotFound, "no file")
		})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if got.Found || got.Empty {
		t.Fatalf("content = %+v", got)
	}
}

func TestFetchFirstEmptyRepoStopsLadder(t *testing.T) {
	noSleep(t)
	calls := 0
	got, err := FetchFirst(context.Background(), FetchOptions{}, []string{"a", "b"},
		func(context.Context, string) (Content, error) {
			calls++
			return Content{}, perr.New(perr.ErrorCodeEmptyRepo, "repository is empty")
		})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !got.Empty || got.Found {
		t.Fatalf("content = %+v", got)
	}
	if calls != 1 {
		t.Fatalf("ladder should stop at the empty signal, calls = %d", calls)
	}
}

func TestFetchFirstForbiddenRetriesThenAbandons(t *testing.T) {
	noSleep(t)
	calls := 0
	got, err := FetchFirst(context.Background(), FetchOptions{ForbiddenRetries: 2}, []string{"a", "b"},
		func(context.Context, string) (Content, error) {
			calls++
			return Content{}, perr.New(perr.ErrorCodeForbidden, "denied")
		})
	if err != nil {
		t.Fatalf("abandonment must not error, got %v", err)
	}
	if got.Found || got.Empty {
		t.Fatalf("content = %+v", got)
	}
	// first attempt plus two retries on path "a"; path "b" never tried
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestFetchFirstForbiddenRecovers(t *testing.T) {
	noSleep(t)
	calls := 0
	got, err := FetchFirst(context.Background(), FetchOptions{ForbiddenRetries: 3}, []string{"a"},
		func(context.Context, string) (Content, error) {
			calls++
			if calls < 3 {
				return Content{}, perr.New(perr.ErrorCodeForbidden, "denied")
			}
			return Content{Text: "late"}, nil
		})
	if err != nil || !got.Found || got.Text != "late" {
		t.Fatalf("got %+v err %v", got, err)
	}
}

func TestFetchFirstHardErrorAborts(t *testing.T) {
	noSleep(t)
	boom := perr.New(perr.ErrorCodeUnavailable, "upstream down")
	_, err := FetchFirst(context.Background(), FetchOptions{}, []string{"a", "b"},
		func(context.Context, string) (Content, error) {
			return Content{}, boom
		})
	if !errors.Is(err, boom) && perr.CodeOf(err) != perr.ErrorCodeUnavailable {
		t.Fatalf("err = %v", err)
	}
}

func TestFetchFirstAppliesDelayHook(t *testing.T) {
	noSleep(t)
	delays := 0
	opts := FetchOptions{Delay: func(context.Context) { delays++ }}
	_, err := FetchFirst(context.Background(), opts, []string{"a", "b"},
		func(context.Context, string) (Content, error) {
			return Content{}, perr.New(perr.ErrorCodeNotFound, "no")
		})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if delays != 2 {
		t.Fatalf("delay hook ran %d times, want once per call", delays)
	}
}

func TestFetchFirstHonorsCancellation(t *testing.T) {
	noSleep(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FetchFirst(ctx, FetchOptions{}, []string{"a"},
		func(context.Context, string) (Content, error) {
			t.Fatal("thunk must not run after cancellation")
			return Content{}, nil
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
