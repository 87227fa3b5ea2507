package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/shurcooL/githubv4"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
)

// blobObject decodes an aliased object(expression:) selection
type blobObject struct {
	Blob struct {
		Text     githubv4.String
		IsBinary githubv4.Boolean
	} `graphql:"... on Blob"`
}

func (b *blobObject) content(htmlURL string) *scm.Content {
	if b == nil || bool(b.Blob.IsBinary) {
		return nil
	}
	return &scm.Content{Text: string(b.Blob.Text), HTMLURL: htmlURL, Found: true}
}

// comprehensiveQuery gathers everything the pipeline needs for one repository
// in a single call: metadata plus every README and CODEOWNERS candidate as an
// aliased blob. The aliases must stay in ReadmePaths()/CodeownersPaths() order
type comprehensiveQuery struct {
	Repository struct {
		Description githubv4.String
		HomepageURL githubv4.String `graphql:"homepageUrl"`
		IsArchived  githubv4.Boolean
		IsDisabled  githubv4.Boolean
		CreatedAt   githubv4.DateTime
		PushedAt    githubv4.DateTime

		LicenseInfo *struct {
			Name githubv4.String
			URL  githubv4.String `graphql:"url"`
		}

		DefaultBranchRef *struct {
			Name githubv4.String
		}

		Languages struct {
			Nodes []struct {
				Name githubv4.String
			}
		} `graphql:"languages(first: 100)"`

		RepositoryTopics struct {
			Nodes []struct {
				Topic struct {
					Name githubv4.String
				}
			}
		} `graphql:"repositoryTopics(first: 50)"`

		Readme0 *blobObject `graphql:"readme0: object(expression: \"HEAD:README.md\")"`
		Readme1 *blobObject `graphql:"readme1: object(expression: \"HEAD:README.rst\")"`
		Readme2 *blobObject `graphql:"readme2: object(expression: \"HEAD:README.txt\")"`
		Readme3 *blobObject `graphql:"readme3: object(expression: \"HEAD:README\")"`
		Readme4 *blobObject `graphql:"readme4: object(expression: \"HEAD:docs/README.md\")"`

		Codeowners0 *blobObject `graphql:"codeowners0: object(expression: \"HEAD:CODEOWNERS\")"`
		Codeowners1 *blobObject `graphql:"codeowners1: object(expression: \"HEAD:.github/CODEOWNERS\")"`
		Codeowners2 *blobObject `graphql:"codeowners2: object(expression: \"HEAD:docs/CODEOWNERS\")"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// FetchMetadata issues the comprehensive query. The returned Meta carries
// resolved README/CODEOWNERS content so the optional-content fetchers answer
// without further API traffic
func (a *Adapter) FetchMetadata(ctx context.Context, stub scm.Stub) (*scm.Meta, error) {
	var q comprehensiveQuery
	vars := map[string]any{
		"owner": githubv4.String(stub.Org),
		"name":  githubv4.String(stub.Name),
	}
	if err := a.graphql.Query(ctx, &q, vars); err != nil {
		return nil, translateGraphQL("repository query", err)
	}
	a.paced(ctx)

	r := q.Repository
	meta := &scm.Meta{
		Description:    string(r.Description),
		Homepage:       string(r.HomepageURL),
		LanguagesKnown: true,
		Archived:       bool(r.IsArchived),
		Disabled:       bool(r.IsDisabled),
		CreatedAt:      r.CreatedAt.Time,
		UpdatedAt:      r.PushedAt.Time,
	}
	if r.LicenseInfo != nil {
		meta.LicenseName = string(r.LicenseInfo.Name)
		meta.LicenseURL = string(r.LicenseInfo.URL)
	}
	for _, n := range r.Languages.Nodes {
		meta.Languages = append(meta.Languages, string(n.Name))
	}
	for _, n := range r.RepositoryTopics.Nodes {
		meta.Topics = append(meta.Topics, string(n.Topic.Name))
	}

	if r.DefaultBranchRef == nil {
		// no branches yet: the repository has no content to fetch
		meta.Readme = &scm.Content{Empty: true}
		meta.Codeowners = &scm.Content{Empty: true}
		return meta, nil
	}
	meta.DefaultBranch = string(r.DefaultBranchRef.Name)

	branch := meta.DefaultBranch
	readmes := []*blobObject{r.Readme0, r.Readme1, r.Readme2, r.Readme3, r.Readme4}
	meta.Readme = firstBlob(readmes, scm.ReadmePaths(), stub.HTMLURL, branch)

	owners := []*blobObject{r.Codeowners0, r.Codeowners1, r.Codeowners2}
	meta.Codeowners = firstBlob(owners, scm.CodeownersPaths(scm.PlatformGitHub), stub.HTMLURL, branch)

	return meta, nil
}

// firstBlob picks the first present candidate; all absent means the file
// definitively does not exist, so the fallback ladder is skipped too
func firstBlob(blobs []*blobObject, paths []string, repoURL, branch string) *scm.Content {
	for i, b := range blobs {
		if c := b.content(blobHTMLURL(repoURL, branch, paths[i])); c != nil {
			return c
		}
	}
	return &scm.Content{}
}

func blobHTMLURL(repoURL, branch, path string) string {
	if repoURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/blob/%s/%s", strings.TrimSuffix(repoURL, "/"), branch, path)
}

// translateGraphQL maps githubv4 failures; the library folds GraphQL errors
// into one message so classification is textual
func translateGraphQL(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "Could not resolve to a Repository"):
		return perr.NotFoundf("github %s: %s", op, msg)
	case strings.Contains(lower, "rate limit") || strings.Contains(msg, "non-200 OK status code: 429"):
		return perr.RateLimitedf("github %s: %s", op, msg)
	case strings.Contains(msg, "non-200 OK status code: 403"):
		return perr.Forbiddenf("github %s: %s", op, msg)
	case strings.Contains(msg, "non-200 OK status code: 401"):
		return perr.Unauthorizedf("github %s: %s", op, msg)
	}
	return perr.Wrapf(err, perr.ErrorCodeAPI, "github %s", op)
}

