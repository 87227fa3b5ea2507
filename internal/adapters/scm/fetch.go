package scm

import (
	"context"
	"time"

	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

// Thunk fetches one candidate path from the provider
type Thunk func(ctx context.Context, path string) (Content, error)

// FetchOptions bounds the optional-content ladder
type FetchOptions struct {
	// ForbiddenRetries is how many quick retries a 403 gets before the
	// whole fetch is abandoned without error
	ForbiddenRetries int
	ForbiddenDelay   time.Duration

	// Delay is the dynamic post-call delay hook, applied before every
	// provider call. Nil means no pacing
	Delay func(ctx context.Context)
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.ForbiddenRetries <= 0 {
		o.ForbiddenRetries = 3
	}
	if o.ForbiddenDelay <= 0 {
		o.ForbiddenDelay = 2 * time.Second
	}
	return o
}

// test seam
var fetchSleep = sleepCtx

// FetchFirst walks the candidate paths and returns the first hit.
//
// Outcome per error code: nil error stops with the content; NotFound moves to
// the next path; EmptyRepo stops and flags the repository empty; Forbidden is
// retried a few times on the same path and then abandons the whole ladder
// without error (the file stays optional even when access is denied);
// anything else aborts with the error
func FetchFirst(ctx context.Context, opts FetchOptions, paths []string, fetch Thunk) (Content, error) {
	opts = opts.withDefaults()
	log := logger.C(ctx)

	for _, path := range paths {
		forbidden := 0
		for {
			if err := ctx.Err(); err != nil {
				return Content{}, err
			}
			if opts.Delay != nil {
				opts.Delay(ctx)
			}

			got, err := fetch(ctx, path)
			if err == nil {
				got.Found = true
				return got, nil
			}

			switch perr.CodeOf(err) {
			case perr.ErrorCodeNotFound:
				// next candidate
			case perr.ErrorCodeEmptyRepo:
				return Content{Empty: true}, nil
			case perr.ErrorCodeForbidden:
				forbidden++
				if forbidden <= opts.ForbiddenRetries {
					log.Debug().Str("path", path).Int("attempt", forbidden).
						Msg("content fetch forbidden, quick retry")
					if se := fetchSleep(ctx, opts.ForbiddenDelay); se != nil {
						return Content{}, se
					}
					continue
				}
				log.Warn().Str("path", path).Msg("content fetch forbidden, abandoning")
				return Content{}, nil
			default:
				return Content{}, err
			}
			break
		}
	}
	return Content{}, nil
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
