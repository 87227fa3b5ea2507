// Package gitlab adapts the GitLab REST v4 API (go-gitlab) to the scanner's
// platform contract. Targets are group paths, optionally nested
// ("group/subgroup"); enumeration includes subgroup projects
package gitlab

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	gl "github.com/xanzy/go-gitlab"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

const defaultTimeout = 30 * time.Second

// Options configures the adapter
type Options struct {
	// Token is a personal or group access token with read_api scope
	Token string

	// BaseURL points at a self-managed instance; empty means gitlab.com
	BaseURL string

	Timeout  time.Duration
	Insecure bool

	// HTTPClient overrides the transport entirely; tests use it
	HTTPClient *http.Client
}

// Adapter implements the scanner platform contract for GitLab
type Adapter struct {
	client *gl.Client
	log    logger.Logger
	pace   func(context.Context)
}

// New builds the go-gitlab client
func New(o Options) (*Adapter, error) {
	if o.Token == "" && o.HTTPClient == nil {
		return nil, perr.InvalidArgf("gitlab: token required")
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}

	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout, Transport: scm.BaseTransport(o.Insecure)}
	}

	// the rate-aware retry wrapper upstream owns backoff, so the client's
	// built-in retryablehttp loop stays off
	opts := []gl.ClientOptionFunc{gl.WithHTTPClient(hc), gl.WithoutRetries()}
	if o.BaseURL != "" {
		opts = append(opts, gl.WithBaseURL(o.BaseURL))
	}
	client, err := gl.NewClient(o.Token, opts...)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "gitlab: client setup")
	}
	return &Adapter{client: client, log: *logger.Named("gitlab")}, nil
}

// Platform identifies the adapter
func (a *Adapter) Platform() string { return scm.PlatformGitLab }

// SetPostCallDelay installs the pacing hook applied after every API call
func (a *Adapter) SetPostCallDelay(d func(context.Context)) { a.pace = d }

func (a *Adapter) paced(ctx context.Context) {
	if a.pace != nil {
		a.pace(ctx)
	}
}

// test seam
var probeSleep = sleepCtx

// RateLimit probes via the lightweight version endpoint and reads the
// RateLimit-* response headers. Instances without rate limiting return nil.
// A 429 during the probe is retried a few times with the header-driven wait
func (a *Adapter) RateLimit(ctx context.Context) *scm.RateStatus {
	for attempt := 0; attempt < 3; attempt++ {
		_, resp, err := a.client.Version.GetVersion(gl.WithContext(ctx))
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
				wait := retryAfterWait(resp.Header, 2*time.Second)
				a.log.Warn().Dur("wait", wait).Int("attempt", attempt+1).Msg("rate limit probe throttled")
				if se := probeSleep(ctx, wait); se != nil {
					return nil
				}
				continue
			}
			a.log.Debug().Err(err).Msg("rate limit probe failed")
			return nil
		}
		return rateFromHeaders(resp.Header)
	}
	return nil
}

// rateFromHeaders parses RateLimit-Remaining/-Limit/-Reset; absent headers
// mean the instance does not throttle, reported as nil
func rateFromHeaders(h http.Header) *scm.RateStatus {
	remaining, errR := strconv.Atoi(h.Get("RateLimit-Remaining"))
	limit, errL := strconv.Atoi(h.Get("RateLimit-Limit"))
	if errR != nil || errL != nil {
		return nil
	}
	st := &scm.RateStatus{Remaining: remaining, Limit: limit}
	if unix, err := strconv.ParseInt(h.Get("RateLimit-Reset"), 10, 64); err == nil {
		st.ResetAt = time.Unix(unix, 0)
	}
	return st
}

func retryAfterWait(h http.Header, fallback time.Duration) time.Duration {
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// translate maps go-gitlab failures onto the shared error taxonomy
func translate(op string, resp *gl.Response, err error) error {
	if err == nil {
		return nil
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	var eresp *gl.ErrorResponse
	if errors.As(err, &eresp) && eresp.Response != nil {
		status = eresp.Response.StatusCode
	}

	switch status {
	case 0:
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "gitlab %s", op)
	case http.StatusTooManyRequests:
		e := perr.RateLimitedf("gitlab %s: rate limited", op)
		if resp != nil {
			e = perr.WithRetryAfter(e, retryAfterWait(resp.Header, time.Minute))
		}
		return e
	default:
		return perr.Wrapf(err, perr.FromHTTPStatus(status), "gitlab %s: status %d", op, status)
	}
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
