// Package github adapts the GitHub REST v3 and GraphQL v4 APIs to the
// scanner's platform contract. Enumeration, commits, and tags ride REST;
// per-repo metadata plus README/CODEOWNERS candidates ride one GraphQL
// query so a full scan costs a single call per repository for content
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v55/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

const defaultTimeout = 30 * time.Second

// Options configures the adapter
type Options struct {
	// Token is a classic or fine-grained PAT; required
	Token string

	// BaseURL switches to a GitHub Enterprise Server instance
	// (REST under <base>/api/v3, GraphQL under <base>/api/graphql).
	// Empty means github.com
	BaseURL string

	Timeout  time.Duration
	Insecure bool

	// HTTPClient overrides the transport entirely; tests use it
	HTTPClient *http.Client
}

// Adapter implements the scanner platform contract for GitHub
type Adapter struct {
	rest    *gh.Client
	graphql *githubv4.Client
	log     logger.Logger
	pace    func(context.Context)
}

// New builds the REST and GraphQL clients off one authenticated transport
func New(o Options) (*Adapter, error) {
	if o.Token == "" && o.HTTPClient == nil {
		return nil, perr.InvalidArgf("github: token required")
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}

	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: o.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.Token}),
				Base:   scm.BaseTransport(o.Insecure),
			},
		}
	}

	a := &Adapter{log: *logger.Named("github")}

	if base := strings.TrimSuffix(o.BaseURL, "/"); base != "" {
		rest, err := gh.NewClient(hc).WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "github: enterprise base url %q", base)
		}
		a.rest = rest
		a.graphql = githubv4.NewEnterpriseClient(graphqlURL(base), hc)
	} else {
		a.rest = gh.NewClient(hc)
		a.graphql = githubv4.NewClient(hc)
	}
	return a, nil
}

// graphqlURL maps a GHES base URL to its GraphQL endpoint
func graphqlURL(base string) string {
	base = strings.TrimSuffix(base, "/api/v3")
	base = strings.TrimSuffix(base, "/api")
	return base + "/api/graphql"
}

// Platform identifies the adapter
func (a *Adapter) Platform() string { return scm.PlatformGitHub }

// SetPostCallDelay installs the pacing hook applied after every API call
func (a *Adapter) SetPostCallDelay(d func(context.Context)) { a.pace = d }

func (a *Adapter) paced(ctx context.Context) {
	if a.pace != nil {
		a.pace(ctx)
	}
}

// RateLimit returns the core REST bucket, or nil when the probe fails
func (a *Adapter) RateLimit(ctx context.Context) *scm.RateStatus {
	limits, _, err := a.rest.RateLimits(ctx)
	if err != nil || limits == nil || limits.Core == nil {
		a.log.Debug().Err(err).Msg("rate limit probe failed")
		return nil
	}
	return &scm.RateStatus{
		Remaining: limits.Core.Remaining,
		Limit:     limits.Core.Limit,
		ResetAt:   limits.Core.Reset.Time,
	}
}

// translate maps go-github failures onto the shared error taxonomy.
// A 409 means the repository has no commits yet
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var rle *gh.RateLimitError
	if errors.As(err, &rle) {
		e := perr.RateLimitedf("github %s: primary rate limit", op)
		if !rle.Rate.Reset.Time.IsZero() {
			if wait := time.Until(rle.Rate.Reset.Time); wait > 0 {
				e = perr.WithRetryAfter(e, wait)
			}
		}
		return e
	}
	var arle *gh.AbuseRateLimitError
	if errors.As(err, &arle) {
		e := perr.RateLimitedf("github %s: secondary rate limit", op)
		if arle.RetryAfter != nil {
			e = perr.WithRetryAfter(e, *arle.RetryAfter)
		}
		return e
	}

	var ger *gh.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil {
		status := ger.Response.StatusCode
		if status == http.StatusConflict {
			return perr.EmptyRepof("github %s: repository is empty", op)
		}
		return perr.Wrapf(err, perr.FromHTTPStatus(status), "github %s: status %d", op, status)
	}

	return perr.Wrapf(err, perr.ErrorCodeUnavailable, "github %s", op)
}

// splitTarget splits "org/name" slugs; target-only input keeps name empty
func splitTarget(s string) (org, name string) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func repoID(r *gh.Repository) string { return fmt.Sprintf("%d", r.GetID()) }
