package azdo

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/textenc"
)

const commitPageSize = 100

// FetchMetadata refreshes the single repository record. The platform keeps
// no description, language, license, or topic data, so the bundle stays
// sparse and LanguagesKnown stays false
func (a *Adapter) FetchMetadata(ctx context.Context, stub scm.Stub) (*scm.Meta, error) {
	org, project, err := stubCoords(stub)
	if err != nil {
		return nil, err
	}

	r, _, err := getJSON[adoRepo](ctx, a, repoPath(org, project, stub.PlatformRepoID), nil)
	if err != nil {
		return nil, err
	}
	a.paced(ctx)

	meta := &scm.Meta{
		DefaultBranch: strings.TrimPrefix(r.DefaultBranch, "refs/heads/"),
		UpdatedAt:     stub.LastActivityAt,
	}
	if r.Size == 0 || meta.DefaultBranch == "" {
		meta.Readme = &scm.Content{Empty: true}
		meta.Codeowners = &scm.Content{Empty: true}
	}
	return meta, nil
}

// FetchReadme walks the items ladder over the README candidates
func (a *Adapter) FetchReadme(ctx context.Context, stub scm.Stub, meta *scm.Meta) (scm.Content, error) {
	if meta != nil && meta.Readme != nil {
		return *meta.Readme, nil
	}
	return scm.FetchFirst(ctx, a.fetchOpts(), scm.ReadmePaths(), a.itemThunk(stub))
}

// FetchCodeowners walks the items ladder over the CODEOWNERS candidates
func (a *Adapter) FetchCodeowners(ctx context.Context, stub scm.Stub, meta *scm.Meta) (scm.Content, error) {
	if meta != nil && meta.Codeowners != nil {
		return *meta.Codeowners, nil
	}
	return scm.FetchFirst(ctx, a.fetchOpts(), scm.CodeownersPaths(scm.PlatformAzure), a.itemThunk(stub))
}

func (a *Adapter) fetchOpts() scm.FetchOptions {
	return scm.FetchOptions{Delay: a.paced}
}

// itemThunk reads one file through the items endpoint with inline content
func (a *Adapter) itemThunk(stub scm.Stub) scm.Thunk {
	return func(ctx context.Context, path string) (scm.Content, error) {
		org, project, err := stubCoords(stub)
		if err != nil {
			return scm.Content{}, err
		}
		q := url.Values{}
		q.Set("path", "/"+path)
		q.Set("includeContent", "true")
		q.Set("$format", "json")
		item, _, err := getJSON[adoItem](ctx, a, repoPath(org, project, stub.PlatformRepoID)+"/items", q)
		a.paced(ctx)
		if err != nil {
			return scm.Content{}, err
		}
		return scm.Content{Text: textenc.Decode([]byte(item.Content)), HTMLURL: itemURL(stub.HTMLURL, path)}, nil
	}
}

func itemURL(repoURL, path string) string {
	if repoURL == "" {
		return ""
	}
	q := url.Values{}
	q.Set("path", "/"+path)
	return repoURL + "?" + q.Encode()
}

// FetchCurrentCommit reads the branch tip. Empty repositories 404 on the
// commit list and report no tip
func (a *Adapter) FetchCurrentCommit(ctx context.Context, stub scm.Stub) (*scm.CommitRef, error) {
	path, err := commitsPath(stub)
	if err != nil {
		return nil, err
	}
	q := commitQuery(stub.DefaultBranch, 1, 0)
	list, _, err := getJSON[adoList[adoCommit]](ctx, a, path, q)
	a.paced(ctx)
	if err != nil {
		if perr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(list.Value) == 0 {
		return nil, nil
	}
	c := list.Value[0]
	return &scm.CommitRef{SHA: c.CommitID, When: c.Committer.Date}, nil
}

// FetchCommitHistory pages the branch history until capN commits
func (a *Adapter) FetchCommitHistory(ctx context.Context, stub scm.Stub, branch string, capN int) ([]scm.Commit, error) {
	path, err := commitsPath(stub)
	if err != nil {
		return nil, err
	}
	var out []scm.Commit
	for skip := 0; ; skip += commitPageSize {
		q := commitQuery(branch, commitPageSize, skip)
		list, _, err := getJSON[adoList[adoCommit]](ctx, a, path, q)
		a.paced(ctx)
		if err != nil {
			if perr.IsNotFound(err) && skip == 0 {
				return nil, nil
			}
			return nil, err
		}
		for _, c := range list.Value {
			out = append(out, scm.Commit{
				SHA:         c.CommitID,
				AuthorName:  c.Author.Name,
				AuthorEmail: c.Author.Email,
				AuthoredAt:  c.Author.Date,
			})
		}
		if capN > 0 && len(out) >= capN {
			return out[:capN], nil
		}
		if len(list.Value) < commitPageSize {
			return out, nil
		}
	}
}

// FetchTags lists tag refs, following the continuation-token header
func (a *Adapter) FetchTags(ctx context.Context, stub scm.Stub) ([]string, error) {
	org, project, err := stubCoords(stub)
	if err != nil {
		return nil, err
	}
	path := repoPath(org, project, stub.PlatformRepoID) + "/refs"

	var names []string
	token := ""
	for {
		q := url.Values{}
		q.Set("filter", "tags/")
		if token != "" {
			q.Set("continuationToken", token)
		}
		list, h, err := getJSON[adoList[adoRef]](ctx, a, path, q)
		a.paced(ctx)
		if err != nil {
			if perr.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		for _, r := range list.Value {
			names = append(names, strings.TrimPrefix(r.Name, "refs/tags/"))
		}
		token = h.Get("X-MS-ContinuationToken")
		if token == "" {
			return names, nil
		}
	}
}

func commitsPath(stub scm.Stub) (string, error) {
	org, project, err := stubCoords(stub)
	if err != nil {
		return "", err
	}
	return repoPath(org, project, stub.PlatformRepoID) + "/commits", nil
}

func commitQuery(branch string, top, skip int) url.Values {
	q := url.Values{}
	q.Set("searchCriteria.$top", strconv.Itoa(top))
	if skip > 0 {
		q.Set("searchCriteria.$skip", strconv.Itoa(skip))
	}
	if branch != "" {
		q.Set("searchCriteria.itemVersion.version", branch)
		q.Set("searchCriteria.itemVersion.versionType", "branch")
	}
	return q
}
