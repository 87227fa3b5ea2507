package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/classify"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/labor"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/markers"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/orgs"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/retry"
	tim "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/time"
)

// job is one paced submission to the worker pool
type job struct {
	stub   scm.Stub
	target string
	sha    string
	empty  bool
	cached *catalog.Record
}

// Worker outcome kinds for the run summary
const (
	kindProcessed = "processed"
	kindCached    = "cached"
	kindEmpty     = "empty"
	kindErrored   = "errored"
)

type result struct {
	rec  catalog.Record
	kind string
}

// processRepository never fails the target: pipeline errors become
// processing-error placeholder records
func (s *Service) processRepository(ctx context.Context, j job) result {
	var (
		rec  *catalog.Record
		kind string
		err  error
	)
	switch {
	case j.cached != nil:
		rec, err = s.replayCached(ctx, j)
		kind = kindCached
	case j.empty:
		rec, err = s.processEmpty(ctx, j)
		kind = kindEmpty
	default:
		rec, err = s.processFull(ctx, j)
		kind = kindProcessed
	}
	if err != nil {
		s.log.Error().Err(err).Str("repo", j.stub.Slug()).Msg("repository failed")
		return result{
			rec: catalog.Record{
				Name:            j.stub.Name,
				Organization:    j.stub.Org,
				ProcessingError: err.Error(),
			},
			kind: kindErrored,
		}
	}
	return result{rec: *rec, kind: kind}
}

// processFull runs the complete pipeline: metadata, optional contents,
// markers, classification, organization resolution, labor, finalization
func (s *Service) processFull(ctx context.Context, j job) (*catalog.Record, error) {
	var meta *scm.Meta
	err := retry.Execute(ctx, s.cfg.Retry, "metadata", func(ctx context.Context) error {
		m, e := s.adapter.FetchMetadata(ctx, j.stub)
		meta = m
		return e
	})
	if err != nil {
		return nil, err
	}

	rec := s.newRecord(j.stub)
	rec.LastCommitSHA = j.sha
	applyMeta(rec, meta)

	readme, owners, tags := s.fetchContents(ctx, j.stub, meta, rec)

	m := markers.Parse(readme.Text)
	rec.ReadmeContent = readme.Text
	rec.ReadmeURL = readme.HTMLURL
	rec.CodeownersContent = owners.Text
	rec.APITags = tags
	rec.Tags = mergeTags(meta.Topics, m.Keywords)
	rec.StatusFromReadme = m.Status
	rec.ContractNumber = m.ContractNumber
	if m.Version != "" {
		rec.Version = m.Version
	}
	rec.PrivateContactEmails = markers.ContactEmails(m, readme.Text, owners.Text, s.cfg.ContactDomain)
	if m.ContactName != "" {
		rec.Contact = &catalog.Contact{Name: m.ContactName}
	}

	s.inferDescription(ctx, rec, readme.Text)

	res := classify.Classify(ctx, classify.Subject{
		Name:           rec.Name,
		Description:    rec.Description,
		Readme:         readme.Text,
		Languages:      meta.Languages,
		LanguagesKnown: meta.LanguagesKnown,
		Visibility:     rec.RepositoryVisibility,
		HasLicense:     meta.LicenseName != "" || meta.LicenseURL != "",
		EmptyRepo:      rec.IsEmptyRepo,
		Markers:        m,
	}, s.classifyAI())
	rec.SetUsage(res.UsageType, res.ExemptionText)
	rec.ExemptionReason = res.Reason

	org, generic := s.resolver.Resolve(ctx, orgs.Request{
		RepoName:           rec.Name,
		Current:            rec.Organization,
		MarkerOrganization: m.Organization,
		Description:        rec.Description,
		Readme:             readme.Text,
		Generics:           []string{j.target, j.stub.Org},
	})
	rec.Organization = org
	rec.IsGenericOrganization = generic

	s.estimateLabor(ctx, j, meta, m, rec)

	if err := s.finalizer.Finalize(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// processEmpty records a husk for size-zero and no-commit repositories
// without any further platform calls
func (s *Service) processEmpty(ctx context.Context, j job) (*catalog.Record, error) {
	rec := s.newRecord(j.stub)
	rec.IsEmptyRepo = true

	res := classify.Classify(ctx, classify.Subject{
		Name:       rec.Name,
		Visibility: rec.RepositoryVisibility,
		EmptyRepo:  true,
	}, nil)
	rec.SetUsage(res.UsageType, res.ExemptionText)
	rec.ExemptionReason = res.Reason

	org, generic := s.resolver.Resolve(ctx, orgs.Request{
		RepoName: rec.Name,
		Current:  rec.Organization,
		Generics: []string{j.target, j.stub.Org},
	})
	rec.Organization = org
	rec.IsGenericOrganization = generic

	if err := s.finalizer.Finalize(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// replayCached reprocesses a prior record without touching the platform.
// The model may fill gaps the prior run left; the exemption side-car append
// is deduplicated by the ledger
func (s *Service) replayCached(ctx context.Context, j job) (*catalog.Record, error) {
	rec := *j.cached

	s.inferDescription(ctx, &rec, "")

	if rec.UsageType() == "" {
		res := classify.Classify(ctx, classify.Subject{
			Name:           rec.Name,
			Description:    rec.Description,
			Languages:      rec.Languages,
			LanguagesKnown: len(rec.Languages) > 0,
			Visibility:     rec.RepositoryVisibility,
			HasLicense:     rec.Permissions != nil && len(rec.Permissions.Licenses) > 0,
		}, s.classifyAI())
		rec.SetUsage(res.UsageType, res.ExemptionText)
		rec.ExemptionReason = res.Reason
	}
	if catalog.IsExempt(rec.UsageType()) && rec.ExemptionReason == "" {
		rec.ExemptionReason = "carried from prior scan"
	}

	if err := s.finalizer.Finalize(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// newRecord seeds a record from enumeration data alone
func (s *Service) newRecord(stub scm.Stub) *catalog.Record {
	return &catalog.Record{
		Name:                 stub.Name,
		Organization:         stub.Org,
		Platform:             s.adapter.Platform(),
		PlatformRepoID:       stub.PlatformRepoID,
		RepositoryURL:        stub.HTMLURL,
		RepositoryVisibility: stub.Visibility,
		VCS:                  "git",
		Version:              catalog.VersionUnknown,
		IsArchived:           stub.Archived,
		Date: &catalog.Dates{
			Created:      isoUTC(stub.CreatedAt),
			LastModified: isoUTC(stub.LastActivityAt),
		},
	}
}

// fetchContents pulls README, CODEOWNERS, and tags in parallel. Content
// failures degrade to absent content; an empty-repository signal flags the
// record instead of failing it
func (s *Service) fetchContents(ctx context.Context, stub scm.Stub, meta *scm.Meta, rec *catalog.Record) (readme, owners scm.Content, tags []string) {
	var emptySignal bool
	var g errgroup.Group

	g.Go(func() error {
		err := retry.Execute(ctx, s.cfg.Retry, "readme", func(ctx context.Context) error {
			c, e := s.adapter.FetchReadme(ctx, stub, meta)
			readme = c
			return e
		})
		switch {
		case err != nil && perr.IsEmptyRepo(err):
			emptySignal = true
		case err != nil:
			s.log.Warn().Err(err).Str("repo", stub.Slug()).Msg("readme fetch failed")
		case readme.Empty:
			emptySignal = true
		}
		return nil
	})
	g.Go(func() error {
		err := retry.Execute(ctx, s.cfg.Retry, "codeowners", func(ctx context.Context) error {
			c, e := s.adapter.FetchCodeowners(ctx, stub, meta)
			owners = c
			return e
		})
		if err != nil && !perr.IsEmptyRepo(err) {
			s.log.Warn().Err(err).Str("repo", stub.Slug()).Msg("codeowners fetch failed")
		}
		return nil
	})
	g.Go(func() error {
		err := retry.Execute(ctx, s.cfg.Retry, "tags", func(ctx context.Context) error {
			t, e := s.adapter.FetchTags(ctx, stub)
			tags = t
			return e
		})
		if err != nil && !perr.IsEmptyRepo(err) {
			s.log.Warn().Err(err).Str("repo", stub.Slug()).Msg("tags fetch failed")
		}
		return nil
	})
	_ = g.Wait()

	// the goroutines have joined; emptySignal is safe to read
	if emptySignal {
		rec.IsEmptyRepo = true
	}
	return readme, owners, tags
}

// estimateLabor fills LaborHours from an explicit README marker or from
// paged commit history. History failures log and leave zero hours
func (s *Service) estimateLabor(ctx context.Context, j job, meta *scm.Meta, m markers.Markers, rec *catalog.Record) {
	if !s.cfg.LaborEnabled || rec.IsEmptyRepo {
		return
	}
	if m.HasLaborHours {
		rec.LaborHours = m.LaborHours
		return
	}

	branch := meta.DefaultBranch
	if branch == "" {
		branch = j.stub.DefaultBranch
	}
	var commits []scm.Commit
	err := retry.Execute(ctx, s.cfg.Retry, "commit history", func(ctx context.Context) error {
		c, e := s.adapter.FetchCommitHistory(ctx, j.stub, branch, s.cfg.LaborCommitCap)
		commits = c
		return e
	})
	if err != nil {
		s.log.Warn().Err(err).Str("repo", j.stub.Slug()).Msg("commit history failed, labor hours unset")
		return
	}

	in := make([]labor.Commit, len(commits))
	for i, c := range commits {
		in[i] = labor.Commit{AuthorName: c.AuthorName, AuthorEmail: c.AuthorEmail, AuthoredAt: c.AuthoredAt}
	}
	hours, _ := labor.Estimate(in, s.cfg.HoursPerCommit)
	rec.LaborHours = hours
}

// inferDescription asks the model to draft a description when the platform
// supplied none. "N/A" is a deliberate placeholder and is kept
func (s *Service) inferDescription(ctx context.Context, rec *catalog.Record, readme string) {
	if strings.TrimSpace(rec.Description) != "" || s.ai == nil || !s.ai.Enabled() {
		return
	}
	d, err := s.ai.InferDescription(ctx, rec.Name, rec.Description, rec.Languages, readme)
	if err != nil {
		s.log.Warn().Err(err).Str("repo", rec.Name).Msg("description inference failed")
		return
	}
	if d != "" {
		rec.Description = d
	}
}

// classifyAI narrows the model port for the classifier; nil disables the AI
// stages entirely
func (s *Service) classifyAI() classify.AI {
	if s.ai == nil || !s.ai.Enabled() {
		return nil
	}
	return s.ai
}

// applyMeta folds the metadata bundle into the record
func applyMeta(rec *catalog.Record, meta *scm.Meta) {
	rec.Description = meta.Description
	rec.HomepageURL = meta.Homepage
	if len(meta.Languages) > 0 {
		rec.Languages = append([]string(nil), meta.Languages...)
	}
	rec.IsArchived = rec.IsArchived || meta.Archived
	if meta.LicenseName != "" || meta.LicenseURL != "" {
		rec.Permissions = &catalog.Permissions{
			Licenses: []catalog.License{{Name: meta.LicenseName, URL: meta.LicenseURL}},
		}
	}
	if !meta.CreatedAt.IsZero() {
		rec.Date.Created = isoUTC(meta.CreatedAt)
	}
	if !meta.UpdatedAt.IsZero() {
		rec.Date.LastModified = isoUTC(meta.UpdatedAt)
	}
}

// mergeTags unions platform topics and README keywords, first occurrence
// wins, comparison case-insensitive
func mergeTags(topics, keywords []string) []string {
	seen := make(map[string]struct{}, len(topics)+len(keywords))
	var out []string
	for _, group := range [][]string{topics, keywords} {
		for _, t := range group {
			v := strings.TrimSpace(t)
			if v == "" {
				continue
			}
			k := strings.ToLower(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func isoUTC(t time.Time) string { return tim.ISO(t) }
