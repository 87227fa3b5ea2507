package github

import (
	"context"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
)

// FetchReadme prefers the content resolved by the comprehensive query and
// only walks the REST contents ladder when metadata is absent
func (a *Adapter) FetchReadme(ctx context.Context, stub scm.Stub, meta *scm.Meta) (scm.Content, error) {
	if meta != nil && meta.Readme != nil {
		return *meta.Readme, nil
	}
	return scm.FetchFirst(ctx, a.fetchOpts(), scm.ReadmePaths(), a.contentThunk(stub))
}

// FetchCodeowners mirrors FetchReadme for the ownership file
func (a *Adapter) FetchCodeowners(ctx context.Context, stub scm.Stub, meta *scm.Meta) (scm.Content, error) {
	if meta != nil && meta.Codeowners != nil {
		return *meta.Codeowners, nil
	}
	return scm.FetchFirst(ctx, a.fetchOpts(), scm.CodeownersPaths(scm.PlatformGitHub), a.contentThunk(stub))
}

func (a *Adapter) fetchOpts() scm.FetchOptions {
	return scm.FetchOptions{Delay: a.paced}
}

func (a *Adapter) contentThunk(stub scm.Stub) scm.Thunk {
	return func(ctx context.Context, path string) (scm.Content, error) {
		fc, _, _, err := a.rest.Repositories.GetContents(ctx, stub.Org, stub.Name, path, nil)
		if err != nil {
			return scm.Content{}, translate("get contents", err)
		}
		if fc == nil {
			return scm.Content{}, perr.NotFoundf("github get contents: %s is a directory", path)
		}
		text, err := fc.GetContent()
		if err != nil {
			return scm.Content{}, perr.Wrapf(err, perr.ErrorCodeAPI, "github get contents: decode %s", path)
		}
		return scm.Content{Text: text, HTMLURL: fc.GetHTMLURL()}, nil
	}
}
