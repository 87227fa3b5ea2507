package azdo

import (
	"context"
	"strings"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
)

// EnumerateStubs probes the project once for visibility and last activity,
// then lists its repositories. Both apply project-wide because the platform
// keeps no per-repository equivalents. Disabled repositories reject every
// Git API call, so they are dropped here with a warning
func (a *Adapter) EnumerateStubs(ctx context.Context, target string) ([]scm.Stub, error) {
	org, project, err := splitTarget(target)
	if err != nil {
		return nil, err
	}

	proj, _, err := getJSON[adoProject](ctx, a, projectPath(org, project), nil)
	if err != nil {
		return nil, err
	}
	a.paced(ctx)

	list, _, err := getJSON[adoList[adoRepo]](ctx, a, reposPath(org, project), nil)
	if err != nil {
		return nil, err
	}
	a.paced(ctx)

	visibility := mapVisibility(proj.Visibility)
	stubs := make([]scm.Stub, 0, len(list.Value))
	for _, r := range list.Value {
		if r.IsDisabled {
			a.log.Warn().Str("repo", r.Name).Msg("repository disabled, skipping")
			continue
		}
		stubs = append(stubs, stubFromRepo(org, project, visibility, proj, r))
	}

	a.log.Info().Str("project", target).Int("repos", len(stubs)).Msg("enumeration complete")
	return stubs, nil
}

func stubFromRepo(org, project, visibility string, proj adoProject, r adoRepo) scm.Stub {
	branch := strings.TrimPrefix(r.DefaultBranch, "refs/heads/")
	return scm.Stub{
		Platform:       scm.PlatformAzure,
		PlatformRepoID: r.ID,
		Org:            org,
		Name:           r.Name,
		FullName:       org + "/" + project + "/" + r.Name,
		HTMLURL:        r.WebURL,
		Visibility:     visibility,
		DefaultBranch:  branch,
		Fork:           r.IsFork,
		SizeZero:       r.Size == 0 || branch == "",
		LastActivityAt: proj.LastUpdateTime,
	}
}

// mapVisibility folds project visibility onto the shared vocabulary;
// "organization" is the members-only tier
func mapVisibility(v string) string {
	switch strings.ToLower(v) {
	case "public":
		return "public"
	case "organization":
		return "internal"
	default:
		return "private"
	}
}
