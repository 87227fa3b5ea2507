package service

import (
	"fmt"
	"time"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/semverx"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
	tim "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/time"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/scanner/domain"
	ledger "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/ledger/domain"
)

// Finalizer applies the ordered post-classification steps to a record:
// private-ID resolution, URL rewriting, exemption logging, status and
// version inference, date normalization, contact defaulting, and agency
// substitution for generic organizations
type Finalizer struct {
	Mapping    domain.MappingPort
	Exemptions domain.ExemptionPort

	Agency              string
	InstructionsURL     string
	ExemptedNoticeURL   string
	PrivateContactEmail string
	DefaultContactEmail string
	InactivityYears     int

	log logger.Logger
	now func() time.Time
}

// NewFinalizer wires a Finalizer over the ledger side-cars
func NewFinalizer(mapping domain.MappingPort, exemptions domain.ExemptionPort) *Finalizer {
	return &Finalizer{
		Mapping:         mapping,
		Exemptions:      exemptions,
		InactivityYears: 2,
		log:             *logger.Named("finalizer"),
		now:             time.Now,
	}
}

// Finalize mutates rec in place. Replayed cache hits pass through unchanged
// where a prior run already decided (status, version, dates, contact)
func (f *Finalizer) Finalize(rec *catalog.Record) error {
	// 1. private-ID resolution, before URL rewriting so the mapping keeps
	// the real repository URL. Replayed records already carry a rewritten
	// URL, which must not leak back into the mapping
	if rec.IsPrivate() {
		realURL := rec.RepositoryURL
		if realURL == f.InstructionsURL || realURL == f.ExemptedNoticeURL {
			realURL = ""
		}
		id, err := f.Mapping.Resolve(ledger.ResolveRequest{
			Platform:       rec.Platform,
			PlatformRepoID: rec.PlatformRepoID,
			RepositoryName: rec.Name,
			RepositoryURL:  realURL,
			Organization:   rec.Organization,
			ContactEmails:  rec.PrivateContactEmails,
		})
		if err != nil {
			return err
		}
		rec.PrivateID = id
	}

	exempt := catalog.IsExempt(rec.UsageType())

	// 2. private/internal records never expose their real URLs
	if rec.IsPrivate() {
		if exempt {
			rec.RepositoryURL = f.ExemptedNoticeURL
		} else {
			rec.RepositoryURL = f.InstructionsURL
		}
		rec.HomepageURL = ""
		rec.ReadmeURL = ""
	}

	// 3. exemption side-car, deduped by the log itself
	if exempt {
		wrote, err := f.Exemptions.Append(ledger.ExemptionEntry{
			PrivateID:      f.exemptionID(rec),
			RepositoryName: rec.Name,
			Reason:         rec.ExemptionReason,
			UsageType:      rec.UsageType(),
			ExemptionText:  rec.Permissions.ExemptionText,
		})
		if err != nil {
			return err
		}
		if wrote {
			f.log.Info().Str("repo", rec.Name).Str("usage_type", rec.UsageType()).Msg("exemption logged")
		}
	}

	// 4. status ladder; cached records keep their prior status
	if rec.Status == "" {
		rec.Status = f.inferStatus(rec)
	}

	// 5. version from tags when the record still carries the placeholder
	if rec.Version == "" {
		rec.Version = catalog.VersionUnknown
	}
	if rec.Version == catalog.VersionUnknown && len(rec.APITags) > 0 {
		if v, ok := semverx.Largest(rec.APITags); ok {
			rec.Version = v
		}
	}

	// 6. dates: already ISO-8601 UTC; clamp inverted ranges and drop the
	// object when nothing survived
	if rec.Date != nil {
		if rec.Date.Created != "" && rec.Date.LastModified != "" && rec.Date.LastModified < rec.Date.Created {
			rec.Date.LastModified = rec.Date.Created
		}
		if rec.Date.Empty() {
			rec.Date = nil
		}
	}

	// contact defaulting: private repositories always publish the agency
	// inbox; public ones surface the first in-domain address found. A
	// contact name from the README survives the email fill
	if rec.Contact == nil {
		rec.Contact = &catalog.Contact{}
	}
	if rec.Contact.Email == "" {
		rec.Contact.Email = f.contactEmail(rec)
	}

	// 7. generic organizations publish as the agency
	if rec.IsGenericOrganization || rec.Organization == "" {
		rec.Organization = f.Agency
	}

	// 8. normalize empties so the marshaled record drops them
	if len(rec.Languages) == 0 {
		rec.Languages = nil
	}
	if len(rec.Tags) == 0 {
		rec.Tags = nil
	}
	if rec.Contact != nil && rec.Contact.Email == "" && rec.Contact.Name == "" {
		rec.Contact = nil
	}

	return rec.Validate()
}

// inferStatus runs the status ladder: the platform archive flag, then an
// explicit README status, then commit staleness, then development
func (f *Finalizer) inferStatus(rec *catalog.Record) string {
	if rec.IsArchived {
		return catalog.StatusArchived
	}
	if rec.StatusFromReadme != "" && catalog.IsValidStatus(rec.StatusFromReadme) {
		return rec.StatusFromReadme
	}
	if rec.Date != nil && rec.Date.LastModified != "" {
		if lm, ok := tim.ParseLenient(rec.Date.LastModified); ok {
			years := f.InactivityYears
			if years <= 0 {
				years = 2
			}
			// strictly older than the threshold counts as inactive
			if lm.Before(f.now().UTC().AddDate(-years, 0, 0)) {
				return catalog.StatusInactive
			}
		}
	}
	return catalog.StatusDevelopment
}

// contactEmail resolves the published point of contact
func (f *Finalizer) contactEmail(rec *catalog.Record) string {
	if rec.IsPrivate() {
		return f.PrivateContactEmail
	}
	if len(rec.PrivateContactEmails) > 0 {
		return rec.PrivateContactEmails[0]
	}
	return f.DefaultContactEmail
}

// exemptionID keys the exemption log; public exempt records have no private
// ID so the platform/repo-ID composite stands in
func (f *Finalizer) exemptionID(rec *catalog.Record) string {
	if rec.PrivateID != "" {
		return rec.PrivateID
	}
	return fmt.Sprintf("%s_%s", rec.Platform, rec.PlatformRepoID)
}
