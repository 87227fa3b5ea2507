// Package azdo adapts the Azure DevOps Git REST API (7.0) to the scanner's
// platform contract. Targets are "Organization/Project" pairs; repository
// visibility and last-activity come from the project, which is the finest
// granularity the platform exposes. There is no language, license, or
// description surface, so those stay unknown and the classifier falls back
// to its later stages
package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

const (
	baseURLDefault = "https://dev.azure.com"
	apiVersion     = "7.0"
	defaultTimeout = 30 * time.Second
	userAgent      = "reposcan"

	// aadTokenURLFmt and adoResourceScope drive the service-principal flow;
	// the scope GUID is the fixed Azure DevOps resource application ID
	aadTokenURLFmt   = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	adoResourceScope = "499b84ac-1321-427f-aa17-267ca6975798/.default"

	// X-RateLimit-* headers only appear when the org nears its quota, so
	// the probe answers with a generous placeholder until one is captured
	placeholderBudget = 5000
	placeholderWindow = 5 * time.Minute
)

// Options configures the adapter
type Options struct {
	// PAT is a personal access token, sent as the Basic password with an
	// empty user
	PAT string

	// ClientID, ClientSecret, and TenantID select the service-principal
	// flow, preferred over the PAT when all three are present
	ClientID     string
	ClientSecret string
	TenantID     string

	// BaseURL points at an Azure DevOps Server; empty means dev.azure.com
	BaseURL string

	Timeout  time.Duration
	Insecure bool

	// HTTPClient overrides transport and auth entirely; tests use it
	HTTPClient *http.Client
}

func (o Options) servicePrincipal() bool {
	return o.ClientID != "" && o.ClientSecret != "" && o.TenantID != ""
}

// Adapter implements the scanner platform contract for Azure DevOps
type Adapter struct {
	http *http.Client
	base string
	log  logger.Logger
	pace func(context.Context)
	now  func() time.Time

	mu   sync.Mutex
	rate *scm.RateStatus
}

// New picks the credential flow and builds the HTTP client
func New(o Options) (*Adapter, error) {
	if o.PAT == "" && !o.servicePrincipal() && o.HTTPClient == nil {
		return nil, perr.InvalidArgf("azure devops: a PAT or a full service principal is required")
	}
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}

	hc := o.HTTPClient
	if hc == nil {
		base := scm.BaseTransport(o.Insecure)
		var rt http.RoundTripper
		if o.servicePrincipal() {
			cc := &clientcredentials.Config{
				ClientID:     o.ClientID,
				ClientSecret: o.ClientSecret,
				TokenURL:     fmt.Sprintf(aadTokenURLFmt, url.PathEscape(o.TenantID)),
				Scopes:       []string{adoResourceScope},
			}
			// token fetches ride the same transport as API calls
			tctx := context.WithValue(context.Background(), oauth2.HTTPClient,
				&http.Client{Timeout: o.Timeout, Transport: base})
			rt = &oauth2.Transport{Source: cc.TokenSource(tctx), Base: base}
		} else {
			rt = basicPAT{pat: o.PAT, base: base}
		}
		hc = &http.Client{Timeout: o.Timeout, Transport: rt}
	}

	return &Adapter{
		http: hc,
		base: strings.TrimSuffix(o.BaseURL, "/"),
		log:  *logger.Named("azure"),
		now:  time.Now,
	}, nil
}

// basicPAT injects the PAT as a Basic password with an empty user
type basicPAT struct {
	pat  string
	base http.RoundTripper
}

func (t basicPAT) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth("", t.pat)
	return t.base.RoundTrip(r)
}

// Platform identifies the adapter
func (a *Adapter) Platform() string { return scm.PlatformAzure }

// SetPostCallDelay installs the pacing hook applied after every API call
func (a *Adapter) SetPostCallDelay(d func(context.Context)) { a.pace = d }

func (a *Adapter) paced(ctx context.Context) {
	if a.pace != nil {
		a.pace(ctx)
	}
}

// RateLimit reports the most recently captured X-RateLimit-* snapshot, or
// the placeholder budget when the platform has not sent any yet
func (a *Adapter) RateLimit(context.Context) *scm.RateStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rate != nil {
		st := *a.rate
		return &st
	}
	return &scm.RateStatus{
		Remaining: placeholderBudget,
		Limit:     placeholderBudget,
		ResetAt:   a.now().Add(placeholderWindow),
	}
}

func (a *Adapter) captureRate(h http.Header) {
	remaining, errR := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	limit, errL := strconv.Atoi(h.Get("X-RateLimit-Limit"))
	if errR != nil || errL != nil {
		return
	}
	st := &scm.RateStatus{Remaining: remaining, Limit: limit}
	if unix, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		st.ResetAt = time.Unix(unix, 0)
	}
	a.mu.Lock()
	a.rate = st
	a.mu.Unlock()
}

// get issues one GET and classifies the response. A 203 is the platform's
// way of serving a sign-in page to a rejected PAT
func (a *Adapter) get(ctx context.Context, path string, query url.Values) ([]byte, http.Header, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", apiVersion)
	u := a.base + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "azure devops new request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := a.now()
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "azure devops get %s", path)
	}
	a.captureRate(resp.Header)

	a.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", a.now().Sub(start)).
		Msg("azure devops http response")

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, resp.Header, perr.Wrapf(err, perr.ErrorCodeUnavailable, "azure devops read %s", path)
		}
		return body, resp.Header, nil
	case http.StatusNonAuthoritativeInfo:
		_ = drainAndClose(resp.Body)
		return nil, resp.Header, perr.Unauthorizedf("azure devops rejected the personal access token")
	case http.StatusTooManyRequests:
		_ = drainAndClose(resp.Body)
		e := perr.RateLimitedf("azure devops throttled %s", path)
		return nil, resp.Header, perr.WithRetryAfter(e, retryAfterWait(resp.Header, a.now(), time.Minute))
	default:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, resp.Header, perr.Newf(perr.FromHTTPStatus(resp.StatusCode),
			"azure devops %s: status %d body %s", path, resp.StatusCode, strings.TrimSpace(string(tail)))
	}
}

// getJSON decodes a get body into T
func getJSON[T any](ctx context.Context, a *Adapter, path string, query url.Values) (T, http.Header, error) {
	var out T
	body, h, err := a.get(ctx, path, query)
	if err != nil {
		return out, h, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, h, perr.Wrapf(err, perr.ErrorCodeJSON, "azure devops decode %s", path)
	}
	return out, h, nil
}

// retryAfterWait picks the server wait hint: Retry-After seconds first,
// then the X-RateLimit-Reset delta, then the fallback
func retryAfterWait(h http.Header, now time.Time, fallback time.Duration) time.Duration {
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if unix, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		if wait := time.Unix(unix, 0).Sub(now); wait > 0 {
			return wait
		}
	}
	return fallback
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// path builders; every segment is escaped

func projectPath(org, project string) string {
	return "/" + url.PathEscape(org) + "/_apis/projects/" + url.PathEscape(project)
}

func reposPath(org, project string) string {
	return "/" + url.PathEscape(org) + "/" + url.PathEscape(project) + "/_apis/git/repositories"
}

func repoPath(org, project, repoID string) string {
	return reposPath(org, project) + "/" + url.PathEscape(repoID)
}

// splitTarget parses an "Organization/Project" pair
func splitTarget(s string) (org, project string, err error) {
	org, project, ok := strings.Cut(s, "/")
	if !ok || org == "" || project == "" {
		return "", "", perr.InvalidArgf("azure devops: target %q must be Organization/Project", s)
	}
	return org, project, nil
}

// stubCoords recovers the organization and project from a stub's full name
func stubCoords(stub scm.Stub) (org, project string, err error) {
	parts := strings.SplitN(stub.FullName, "/", 3)
	if len(parts) != 3 {
		return "", "", perr.InvalidArgf("azure devops: malformed repository path %q", stub.FullName)
	}
	return parts[0], parts[1], nil
}
