// Package scm holds the platform-neutral source-control types and the
// fetch/enumeration helpers shared by the GitHub, GitLab, and Azure DevOps
// adapters
package scm

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifiers; also the privateID prefix for private repositories
const (
	PlatformGitHub = "github"
	PlatformGitLab = "gitlab"
	PlatformAzure  = "azure"
)

// Stub is the lightweight record produced by enumeration. It carries just
// enough to pace, filter, and key the cache before any per-repo calls
type Stub struct {
	Platform       string
	PlatformRepoID string
	Org            string
	Name           string
	FullName       string
	HTMLURL        string
	Visibility     string
	DefaultBranch  string
	Fork           bool
	Archived       bool
	SizeZero       bool
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// Slug is the stable "org/name" identity used in logs and cache aliases
func (s Stub) Slug() string {
	if s.FullName != "" {
		return s.FullName
	}
	return fmt.Sprintf("%s/%s", s.Org, s.Name)
}

// CacheAlias is the lowercased slug used as a secondary cache key
func (s Stub) CacheAlias() string { return strings.ToLower(s.Slug()) }

// CommitRef identifies the tip of the default branch
type CommitRef struct {
	SHA  string
	When time.Time
}

// Commit is one history entry used for labor estimation
type Commit struct {
	SHA         string
	AuthorName  string
	AuthorEmail string
	AuthoredAt  time.Time
}

// Content is the outcome of an optional-content fetch. Found and Empty are
// distinct: a repository can exist without the file (Found=false) or have no
// content at all (Empty=true)
type Content struct {
	Text    string
	HTMLURL string
	Found   bool
	Empty   bool
}

// Meta is the per-repository metadata bundle. Readme and Codeowners are
// non-nil when the adapter already resolved them during the metadata call,
// letting FetchReadme/FetchCodeowners answer without more API traffic.
// LanguagesKnown separates "no languages detected" from "the platform has
// no language detection" (Azure DevOps)
type Meta struct {
	Description    string
	Homepage       string
	Languages      []string
	LanguagesKnown bool
	Topics         []string
	LicenseName    string
	LicenseURL     string
	Archived       bool
	Disabled       bool
	DefaultBranch  string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Readme     *Content
	Codeowners *Content
}

// RateStatus is one provider rate-limit snapshot
type RateStatus struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// SecondsToReset returns the window left until reset, floored at zero
func (r RateStatus) SecondsToReset(now time.Time) float64 {
	d := r.ResetAt.Sub(now).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// Candidate README paths, most specific first
func ReadmePaths() []string {
	return []string{"README.md", "README.rst", "README.txt", "README", "docs/README.md"}
}

// CodeownersPaths returns the candidate CODEOWNERS locations for a platform.
// The shared list always applies; the platform adds its conventional directory
func CodeownersPaths(platform string) []string {
	paths := []string{"CODEOWNERS", ".github/CODEOWNERS"}
	switch platform {
	case PlatformGitLab:
		paths = append(paths, ".gitlab/CODEOWNERS")
	case PlatformAzure:
		paths = append(paths, ".azuredevops/CODEOWNERS")
	}
	return append(paths, "docs/CODEOWNERS")
}
