package gitlab

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	gl "github.com/xanzy/go-gitlab"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/textenc"
)

// FetchMetadata reads the project detail (with license) plus its language
// breakdown. README and CODEOWNERS stay unresolved; the raw-file ladder
// fetches them on demand
func (a *Adapter) FetchMetadata(ctx context.Context, stub scm.Stub) (*scm.Meta, error) {
	pid := projectID(stub)

	p, resp, err := a.client.Projects.GetProject(pid, &gl.GetProjectOptions{License: gl.Ptr(true)}, gl.WithContext(ctx))
	a.paced(ctx)
	if err != nil {
		return nil, translate("get project", resp, err)
	}

	meta := &scm.Meta{
		Description:    p.Description,
		LanguagesKnown: true,
		Topics:         p.Topics,
		Archived:       p.Archived,
		DefaultBranch:  p.DefaultBranch,
	}
	if p.CreatedAt != nil {
		meta.CreatedAt = *p.CreatedAt
	}
	if p.LastActivityAt != nil {
		meta.UpdatedAt = *p.LastActivityAt
	}
	if p.License != nil {
		meta.LicenseName = p.License.Name
		meta.LicenseURL = p.License.HTMLURL
	}

	if p.EmptyRepo {
		meta.Readme = &scm.Content{Empty: true}
		meta.Codeowners = &scm.Content{Empty: true}
		return meta, nil
	}

	langs, lresp, err := a.client.Projects.GetProjectLanguages(pid, gl.WithContext(ctx))
	a.paced(ctx)
	if err != nil {
		return nil, translate("get project languages", lresp, err)
	}
	if langs != nil {
		for name := range *langs {
			meta.Languages = append(meta.Languages, name)
		}
	}
	return meta, nil
}

// FetchReadme walks the raw-file ladder over the README candidates
func (a *Adapter) FetchReadme(ctx context.Context, stub scm.Stub, meta *scm.Meta) (scm.Content, error) {
	if meta != nil && meta.Readme != nil {
		return *meta.Readme, nil
	}
	return scm.FetchFirst(ctx, a.fetchOpts(), scm.ReadmePaths(), a.rawFileThunk(stub, meta))
}

// FetchCodeowners walks the raw-file ladder over the CODEOWNERS candidates
func (a *Adapter) FetchCodeowners(ctx context.Context, stub scm.Stub, meta *scm.Meta) (scm.Content, error) {
	if meta != nil && meta.Codeowners != nil {
		return *meta.Codeowners, nil
	}
	return scm.FetchFirst(ctx, a.fetchOpts(), scm.CodeownersPaths(scm.PlatformGitLab), a.rawFileThunk(stub, meta))
}

func (a *Adapter) fetchOpts() scm.FetchOptions {
	return scm.FetchOptions{Delay: a.paced}
}

func (a *Adapter) rawFileThunk(stub scm.Stub, meta *scm.Meta) scm.Thunk {
	branch := stub.DefaultBranch
	if meta != nil && meta.DefaultBranch != "" {
		branch = meta.DefaultBranch
	}
	return func(ctx context.Context, path string) (scm.Content, error) {
		opt := &gl.GetRawFileOptions{}
		if branch != "" {
			opt.Ref = gl.Ptr(branch)
		}
		raw, resp, err := a.client.RepositoryFiles.GetRawFile(projectID(stub), path, opt, gl.WithContext(ctx))
		if err != nil {
			return scm.Content{}, translate("get raw file", resp, err)
		}
		return scm.Content{Text: textenc.Decode(raw), HTMLURL: blobURL(stub, branch, path)}, nil
	}
}

// FetchCurrentCommit probes the branch tip with a one-item page. GitLab
// answers 404 for projects without commits, which maps to the empty signal
func (a *Adapter) FetchCurrentCommit(ctx context.Context, stub scm.Stub) (*scm.CommitRef, error) {
	opt := &gl.ListCommitsOptions{ListOptions: gl.ListOptions{PerPage: 1}}
	if stub.DefaultBranch != "" {
		opt.RefName = gl.Ptr(stub.DefaultBranch)
	}

	commits, resp, err := a.client.Commits.ListCommits(projectID(stub), opt, gl.WithContext(ctx))
	a.paced(ctx)
	if err != nil {
		terr := translate("list commits", resp, err)
		if perr.IsNotFound(terr) {
			return nil, nil
		}
		return nil, terr
	}
	if len(commits) == 0 {
		return nil, nil
	}

	ref := &scm.CommitRef{SHA: commits[0].ID}
	if commits[0].CommittedDate != nil {
		ref.When = *commits[0].CommittedDate
	}
	return ref, nil
}

// FetchCommitHistory pages the branch history for labor estimation, stopping
// at capN commits when capN > 0
func (a *Adapter) FetchCommitHistory(ctx context.Context, stub scm.Stub, branch string, capN int) ([]scm.Commit, error) {
	opt := &gl.ListCommitsOptions{ListOptions: gl.ListOptions{PerPage: 100}}
	if branch != "" {
		opt.RefName = gl.Ptr(branch)
	}

	var out []scm.Commit
	for {
		commits, resp, err := a.client.Commits.ListCommits(projectID(stub), opt, gl.WithContext(ctx))
		a.paced(ctx)
		if err != nil {
			terr := translate("commit history", resp, err)
			if perr.IsNotFound(terr) {
				return nil, nil
			}
			return nil, terr
		}
		for _, c := range commits {
			out = append(out, commitFromAPI(c))
			if capN > 0 && len(out) >= capN {
				return out, nil
			}
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opt.Page = resp.NextPage
	}
}

// FetchTags returns every tag name
func (a *Adapter) FetchTags(ctx context.Context, stub scm.Stub) ([]string, error) {
	opt := &gl.ListTagsOptions{ListOptions: gl.ListOptions{PerPage: 100}}

	var tags []string
	for {
		page, resp, err := a.client.Tags.ListTags(projectID(stub), opt, gl.WithContext(ctx))
		a.paced(ctx)
		if err != nil {
			terr := translate("list tags", resp, err)
			if perr.IsNotFound(terr) {
				return nil, nil
			}
			return nil, terr
		}
		for _, t := range page {
			if t.Name != "" {
				tags = append(tags, t.Name)
			}
		}
		if resp.NextPage == 0 {
			return tags, nil
		}
		opt.Page = resp.NextPage
	}
}

func commitFromAPI(c *gl.Commit) scm.Commit {
	out := scm.Commit{SHA: c.ID, AuthorName: c.AuthorName, AuthorEmail: c.AuthorEmail}
	if c.AuthoredDate != nil {
		out.AuthoredAt = *c.AuthoredDate
	}
	return out
}

// projectID prefers the numeric id and falls back to the namespace path
func projectID(stub scm.Stub) any {
	if stub.PlatformRepoID != "" {
		return stub.PlatformRepoID
	}
	return stub.FullName
}

func blobURL(stub scm.Stub, branch, path string) string {
	if stub.HTMLURL == "" {
		return ""
	}
	if branch == "" {
		branch = "HEAD"
	}
	return fmt.Sprintf("%s/-/blob/%s/%s", strings.TrimSuffix(stub.HTMLURL, "/"), url.PathEscape(branch), path)
}
