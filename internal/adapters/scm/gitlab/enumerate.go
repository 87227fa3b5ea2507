package gitlab

import (
	"context"
	"strconv"

	gl "github.com/xanzy/go-gitlab"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
)

// EnumerateStubs pages through every project of a group including subgroups.
// The target is the group path, nested paths allowed
func (a *Adapter) EnumerateStubs(ctx context.Context, target string) ([]scm.Stub, error) {
	opt := &gl.ListGroupProjectsOptions{
		ListOptions:      gl.ListOptions{PerPage: 100},
		IncludeSubGroups: gl.Ptr(true),
	}

	var stubs []scm.Stub
	for {
		projects, resp, err := a.client.Groups.ListGroupProjects(target, opt, gl.WithContext(ctx))
		if err != nil {
			return nil, translate("list group projects", resp, err)
		}
		for _, p := range projects {
			stubs = append(stubs, stubFromProject(target, p))
		}
		a.paced(ctx)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	a.log.Info().Str("group", target).Int("projects", len(stubs)).Msg("enumeration complete")
	return stubs, nil
}

func stubFromProject(group string, p *gl.Project) scm.Stub {
	s := scm.Stub{
		Platform:       scm.PlatformGitLab,
		PlatformRepoID: strconv.Itoa(p.ID),
		Org:            group,
		Name:           p.Path,
		FullName:       p.PathWithNamespace,
		HTMLURL:        p.WebURL,
		Visibility:     string(p.Visibility),
		DefaultBranch:  p.DefaultBranch,
		Fork:           p.ForkedFromProject != nil,
		Archived:       p.Archived,
		SizeZero:       p.EmptyRepo,
	}
	if p.CreatedAt != nil {
		s.CreatedAt = *p.CreatedAt
	}
	if p.LastActivityAt != nil {
		s.LastActivityAt = *p.LastActivityAt
	}
	if s.Visibility == "" {
		s.Visibility = "private"
	}
	return s
}
