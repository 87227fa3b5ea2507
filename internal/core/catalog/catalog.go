// Package catalog defines the repository record and final catalog shapes.
//
// Records flow from the platform adapters through the classifier, organization
// resolver, and finalizer into per-target intermediate files; the merge phase
// unions intermediates into the agency catalog (code.json). Underscore-style
// working fields are never serialized; lastCommitSHA is serialized into
// intermediates (it feeds the next run's cache) and stripped from the final
// catalog by the merge phase.
package catalog

import (
	"strings"
)

// Usage types accepted in permissions.usageType
const (
	UsageOpenSource               = "openSource"
	UsageGovernmentWideReuse      = "governmentWideReuse"
	UsageExemptByLaw              = "exemptByLaw"
	UsageExemptByNationalSecurity = "exemptByNationalSecurity"
	UsageExemptByAgencySystem     = "exemptByAgencySystem"
	UsageExemptByMissionSystem    = "exemptByMissionSystem"
	UsageExemptByCIO              = "exemptByCIO"
	UsageExemptNonCode            = "exemptNonCode"
)

// Status values accepted in status
const (
	StatusDevelopment  = "development"
	StatusMaintained   = "maintained"
	StatusDeprecated   = "deprecated"
	StatusExperimental = "experimental"
	StatusInactive     = "inactive"
	StatusArchived     = "archived"
)

// Repository visibility values as reported by the platforms
const (
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityInternal = "internal"
)

// VersionUnknown is the version placeholder the finalizer tries to replace from tags
const VersionUnknown = "N/A"

// UsageTypes lists every accepted usage type
func UsageTypes() []string {
	return []string{
		UsageOpenSource,
		UsageGovernmentWideReuse,
		UsageExemptByLaw,
		UsageExemptByNationalSecurity,
		UsageExemptByAgencySystem,
		UsageExemptByMissionSystem,
		UsageExemptByCIO,
		UsageExemptNonCode,
	}
}

// ExemptionCodes lists the usage types a manual README marker or the AI may assign
func ExemptionCodes() []string {
	return []string{
		UsageExemptByLaw,
		UsageExemptByNationalSecurity,
		UsageExemptByAgencySystem,
		UsageExemptByMissionSystem,
		UsageExemptByCIO,
	}
}

// IsExempt reports whether u is an exemption usage type
func IsExempt(u string) bool { return strings.HasPrefix(u, "exempt") }

// IsValidUsageType reports whether u is in the accepted set
func IsValidUsageType(u string) bool {
	for _, v := range UsageTypes() {
		if u == v {
			return true
		}
	}
	return false
}

// IsValidExemptionCode reports whether code may be assigned by a marker or the AI
func IsValidExemptionCode(code string) bool {
	for _, v := range ExemptionCodes() {
		if code == v {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is in the accepted set
func IsValidStatus(s string) bool {
	switch s {
	case StatusDevelopment, StatusMaintained, StatusDeprecated,
		StatusExperimental, StatusInactive, StatusArchived:
		return true
	}
	return false
}

// IsPrivateVisibility reports whether v requires private-ID handling and URL rewriting
func IsPrivateVisibility(v string) bool {
	return v == VisibilityPrivate || v == VisibilityInternal
}

// License is one entry under permissions.licenses
type License struct {
	URL  string `json:"URL,omitempty"`
	Name string `json:"name,omitempty"`
}

// Permissions carries the classification outcome
type Permissions struct {
	UsageType     string    `json:"usageType,omitempty"      validate:"omitempty,oneof=openSource governmentWideReuse exemptByLaw exemptByNationalSecurity exemptByAgencySystem exemptByMissionSystem exemptByCIO exemptNonCode"`
	ExemptionText string    `json:"exemptionText,omitempty"`
	Licenses      []License `json:"licenses,omitempty"`
}

// Dates carries the record's ISO-8601 UTC timestamps
type Dates struct {
	Created             string `json:"created,omitempty"`
	LastModified        string `json:"lastModified,omitempty"`
	MetadataLastUpdated string `json:"metadataLastUpdated,omitempty"`
}

// Empty reports whether every date field is blank
func (d *Dates) Empty() bool {
	return d == nil || (d.Created == "" && d.LastModified == "" && d.MetadataLastUpdated == "")
}

// Contact is the published point of contact
type Contact struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Name  string `json:"name,omitempty"`
}

// Record is the central repository entity. Fields tagged json:"-" are
// working state for the pipeline and never reach any artifact
type Record struct {
	Name           string `json:"name,omitempty"`
	Organization   string `json:"organization,omitempty"`
	Platform       string `json:"platform,omitempty"`
	PlatformRepoID string `json:"repo_id,omitempty"`
	PrivateID      string `json:"privateID,omitempty"`

	RepositoryURL        string   `json:"repositoryURL,omitempty"`
	HomepageURL          string   `json:"homepageURL,omitempty"`
	Description          string   `json:"description,omitempty"`
	VCS                  string   `json:"vcs,omitempty"`
	RepositoryVisibility string   `json:"repositoryVisibility,omitempty"`
	Languages            []string `json:"languages,omitempty"`
	Tags                 []string `json:"tags,omitempty"`
	ReadmeURL            string   `json:"readme_url,omitempty"`

	Permissions *Permissions `json:"permissions,omitempty"`
	LaborHours  float64      `json:"laborHours,omitempty"`
	Status      string       `json:"status,omitempty"       validate:"omitempty,oneof=development maintained deprecated experimental inactive archived"`
	Version     string       `json:"version,omitempty"`
	Date        *Dates       `json:"date,omitempty"`
	Contact     *Contact     `json:"contact,omitempty"`

	// Serialized into intermediates for the next run's cache; stripped at merge
	LastCommitSHA string `json:"lastCommitSHA,omitempty"`

	// Errored repositories appear as {name, organization, processing_error}
	ProcessingError string `json:"processing_error,omitempty"`

	// Working fields, never serialized
	ReadmeContent         string   `json:"-"`
	CodeownersContent     string   `json:"-"`
	APITags               []string `json:"-"`
	StatusFromReadme      string   `json:"-"`
	IsArchived            bool     `json:"-"`
	IsEmptyRepo           bool     `json:"-"`
	PrivateContactEmails  []string `json:"-"`
	IsGenericOrganization bool     `json:"-"`
	ContractNumber        string   `json:"-"`
	ExemptionReason       string   `json:"-"`
}

// Errored reports whether the record is a processing-error placeholder
func (r *Record) Errored() bool { return r.ProcessingError != "" }

// UsageType returns permissions.usageType or "" when unset
func (r *Record) UsageType() string {
	if r.Permissions == nil {
		return ""
	}
	return r.Permissions.UsageType
}

// SetUsage assigns usage type and exemption text, allocating permissions as needed
func (r *Record) SetUsage(usageType, exemptionText string) {
	if r.Permissions == nil {
		r.Permissions = &Permissions{}
	}
	r.Permissions.UsageType = usageType
	r.Permissions.ExemptionText = exemptionText
}

// IsPrivate reports whether the record needs private-ID handling
func (r *Record) IsPrivate() bool { return IsPrivateVisibility(r.RepositoryVisibility) }

// MeasurementType is the fixed catalog measurement descriptor
type MeasurementType struct {
	Method string `json:"method"`
}

// Catalog is the merged code.json envelope
type Catalog struct {
	Version         string          `json:"version"`
	Agency          string          `json:"agency"`
	MeasurementType MeasurementType `json:"measurementType"`
	Projects        []Record        `json:"projects"`
}

// CatalogVersion is the schema version stamped on the envelope
const CatalogVersion = "2.0"

// NewCatalog wraps projects in the fixed envelope
func NewCatalog(agency string, projects []Record) Catalog {
	if projects == nil {
		projects = []Record{}
	}
	return Catalog{
		Version:         CatalogVersion,
		Agency:          agency,
		MeasurementType: MeasurementType{Method: "projects"},
		Projects:        projects,
	}
}
