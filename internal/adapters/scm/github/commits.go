package github

import (
	"context"

	gh "github.com/google/go-github/v55/github"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
)

// FetchCurrentCommit probes the default branch tip with a one-item page.
// A nil ref without error means the repository has no commits
func (a *Adapter) FetchCurrentCommit(ctx context.Context, stub scm.Stub) (*scm.CommitRef, error) {
	opt := &gh.CommitsListOptions{ListOptions: gh.ListOptions{PerPage: 1}}
	if stub.DefaultBranch != "" {
		opt.SHA = stub.DefaultBranch
	}

	commits, _, err := a.rest.Repositories.ListCommits(ctx, stub.Org, stub.Name, opt)
	a.paced(ctx)
	if err != nil {
		terr := translate("list commits", err)
		if perr.IsEmptyRepo(terr) {
			return nil, nil
		}
		return nil, terr
	}
	if len(commits) == 0 {
		return nil, nil
	}

	ref := &scm.CommitRef{SHA: commits[0].GetSHA()}
	if c := commits[0].GetCommit(); c != nil && c.GetCommitter() != nil {
		ref.When = c.GetCommitter().GetDate().Time
	}
	return ref, nil
}

// FetchCommitHistory pages the branch history for labor estimation, stopping
// at capN commits when capN > 0
func (a *Adapter) FetchCommitHistory(ctx context.Context, stub scm.Stub, branch string, capN int) ([]scm.Commit, error) {
	opt := &gh.CommitsListOptions{ListOptions: gh.ListOptions{PerPage: 100}}
	if branch != "" {
		opt.SHA = branch
	}

	var out []scm.Commit
	for {
		commits, resp, err := a.rest.Repositories.ListCommits(ctx, stub.Org, stub.Name, opt)
		a.paced(ctx)
		if err != nil {
			terr := translate("commit history", err)
			if perr.IsEmptyRepo(terr) {
				return nil, nil
			}
			return nil, terr
		}
		for _, rc := range commits {
			out = append(out, commitFromAPI(rc))
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

// FetchTags returns every tag name, newest first as the API reports them
func (a *Adapter) FetchTags(ctx context.Context, stub scm.Stub) ([]string, error) {
	opt := &gh.ListOptions{PerPage: 100}

	var tags []string
	for {
		page, resp, err := a.rest.Repositories.ListTags(ctx, stub.Org, stub.Name, opt)
		a.paced(ctx)
		if err != nil {
			terr := translate("list tags", err)
			if perr.IsEmptyRepo(terr) {
				return nil, nil
			}
			return nil, terr
		}
		for _, t := range page {
			if t.GetName() != "" {
				tags = append(tags, t.GetName())
			}
		}
		if resp.NextPage == 0 {
			return tags, nil
		}
		opt.Page = resp.NextPage
	}
}

func commitFromAPI(rc *gh.RepositoryCommit) scm.Commit {
	out := scm.Commit{SHA: rc.GetSHA()}
	if c := rc.GetCommit(); c != nil {
		if au := c.GetAuthor(); au != nil {
			out.AuthorName = au.GetName()
			out.AuthorEmail = au.GetEmail()
			out.AuthoredAt = au.GetDate().Time
		}
	}
	return out
}
