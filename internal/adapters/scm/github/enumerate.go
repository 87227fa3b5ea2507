package github

import (
	"context"

	gh "github.com/google/go-github/v55/github"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
)

// EnumerateStubs pages through every repository of an organization. The
// target is the org login
func (a *Adapter) EnumerateStubs(ctx context.Context, target string) ([]scm.Stub, error) {
	opt := &gh.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var stubs []scm.Stub
	for {
		repos, resp, err := a.rest.Repositories.ListByOrg(ctx, target, opt)
		if err != nil {
			return nil, translate("list repositories", err)
		}
		for _, r := range repos {
			stubs = append(stubs, stubFromRepo(target, r))
		}
		a.paced(ctx)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	a.log.Info().Str("org", target).Int("repos", len(stubs)).Msg("enumeration complete")
	return stubs, nil
}

func stubFromRepo(org string, r *gh.Repository) scm.Stub {
	visibility := r.GetVisibility()
	if visibility == "" {
		// older GHES versions omit the field
		if r.GetPrivate() {
			visibility = "private"
		} else {
			visibility = "public"
		}
	}
	return scm.Stub{
		Platform:       scm.PlatformGitHub,
		PlatformRepoID: repoID(r),
		Org:            org,
		Name:           r.GetName(),
		FullName:       r.GetFullName(),
		HTMLURL:        r.GetHTMLURL(),
		Visibility:     visibility,
		DefaultBranch:  r.GetDefaultBranch(),
		Fork:           r.GetFork(),
		Archived:       r.GetArchived(),
		SizeZero:       r.GetSize() == 0,
		CreatedAt:      r.GetCreatedAt().Time,
		LastActivityAt: r.GetPushedAt().Time,
	}
}
