package catalog

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUsageTypeSets(t *testing.T) {
	t.Parallel()

	for _, u := range UsageTypes() {
		if !IsValidUsageType(u) {
			t.Fatalf("IsValidUsageType(%q) = false", u)
		}
	}
	if IsValidUsageType("proprietary") {
		t.Fatalf("IsValidUsageType accepted an unknown value")
	}

	for _, c := range ExemptionCodes() {
		if !IsExempt(c) {
			t.Fatalf("exemption code %q should report IsExempt", c)
		}
		if !IsValidExemptionCode(c) {
			t.Fatalf("IsValidExemptionCode(%q) = false", c)
		}
	}
	// exemptNonCode is a valid usage type but not a manual/AI assignable code
	if IsValidExemptionCode(UsageExemptNonCode) {
		t.Fatalf("exemptNonCode must not be assignable as a manual exemption code")
	}
	if IsExempt(UsageOpenSource) || IsExempt(UsageGovernmentWideReuse) {
		t.Fatalf("non-exempt usage types misreported")
	}
}

func TestVisibilityAndStatus(t *testing.T) {
	t.Parallel()

	if !IsPrivateVisibility(VisibilityPrivate) || !IsPrivateVisibility(VisibilityInternal) {
		t.Fatalf("private/internal should be private visibilities")
	}
	if IsPrivateVisibility(VisibilityPublic) {
		t.Fatalf("public must not be private")
	}
	for _, s := range []string{"development", "maintained", "deprecated", "experimental", "inactive", "archived"} {
		if !IsValidStatus(s) {
			t.Fatalf("IsValidStatus(%q) = false", s)
		}
	}
	if IsValidStatus("Active") {
		t.Fatalf("raw README status must not be a valid catalog status")
	}
}

func TestRecordWorkingFieldsNeverSerialized(t *testing.T) {
	t.Parallel()

	r := Record{
		Name:                  "repo",
		Platform:              "github",
		PlatformRepoID:        "42",
		ReadmeContent:         "# hidden",
		CodeownersContent:     "* @owner",
		APITags:               []string{"v1.0.0"},
		StatusFromReadme:      "maintained",
		IsEmptyRepo:           true,
		PrivateContactEmails:  []string{"a@cdc.gov"},
		IsGenericOrganization: true,
		ContractNumber:        "75D301",
		LastCommitSHA:         "abc",
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	for _, forbidden := range []string{"hidden", "@owner", "maintained", "a@cdc.gov", "75D301"} {
		if strings.Contains(out, forbidden) {
			t.Fatalf("working field leaked into JSON: %q in %s", forbidden, out)
		}
	}
	// lastCommitSHA is intermediate state and must survive serialization
	if !strings.Contains(out, `"lastCommitSHA":"abc"`) {
		t.Fatalf("lastCommitSHA missing from intermediate JSON: %s", out)
	}
	if !strings.Contains(out, `"repo_id":"42"`) {
		t.Fatalf("repo_id missing from JSON: %s", out)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	in := Record{
		Name:                 "datahub",
		Organization:         "csels",
		Platform:             "github",
		PlatformRepoID:       "42",
		RepositoryURL:        "https://github.com/acme/datahub",
		RepositoryVisibility: "public",
		Languages:            []string{"Go", "Python"},
		Permissions:          &Permissions{UsageType: UsageOpenSource, Licenses: []License{{Name: "Apache-2.0"}}},
		Date:                 &Dates{Created: "2020-01-02T00:00:00Z", LastModified: "2024-03-04T00:00:00Z"},
		Contact:              &Contact{Email: "shareit@cdc.gov"},
		LaborHours:           12,
		Status:               StatusMaintained,
		Version:              "1.2.3",
		LastCommitSHA:        "abc",
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Record
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Name != in.Name || out.UsageType() != UsageOpenSource ||
		out.LastCommitSHA != "abc" || out.LaborHours != 12 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.Date == nil || out.Date.LastModified != "2024-03-04T00:00:00Z" {
		t.Fatalf("date round trip mismatch: %+v", out.Date)
	}
}

func TestSetUsage(t *testing.T) {
	t.Parallel()

	var r Record
	r.SetUsage(UsageExemptByLaw, "HIPAA PHI")
	if r.UsageType() != UsageExemptByLaw || r.Permissions.ExemptionText != "HIPAA PHI" {
		t.Fatalf("SetUsage result = %+v", r.Permissions)
	}
}

func TestNewCatalogEnvelope(t *testing.T) {
	t.Parallel()

	c := NewCatalog("CDC", nil)
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"version":"2.0"`, `"agency":"CDC"`, `"measurementType":{"method":"projects"}`, `"projects":[]`} {
		if !strings.Contains(out, want) {
			t.Fatalf("envelope missing %s: %s", want, out)
		}
	}
}

func TestValidateInvariants(t *testing.T) {
	t.Parallel()

	ok := Record{
		Name:                 "repo",
		Platform:             "github",
		RepositoryVisibility: "public",
		Permissions:          &Permissions{UsageType: UsageOpenSource},
		Status:               StatusDevelopment,
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	missingUsage := ok
	missingUsage.Permissions = &Permissions{}
	if err := missingUsage.Validate(); err == nil {
		t.Fatalf("record without usage type accepted")
	}

	exemptNoText := ok
	exemptNoText.Permissions = &Permissions{UsageType: UsageExemptByCIO}
	if err := exemptNoText.Validate(); err == nil {
		t.Fatalf("exempt record without text accepted")
	}

	privNoID := ok
	privNoID.RepositoryVisibility = "private"
	privNoID.Permissions = &Permissions{UsageType: UsageGovernmentWideReuse}
	if err := privNoID.Validate(); err == nil {
		t.Fatalf("private record without privateID accepted")
	}

	privOK := privNoID
	privOK.PrivateID = "github_42"
	if err := privOK.Validate(); err != nil {
		t.Fatalf("private record with privateID rejected: %v", err)
	}

	badID := privOK
	badID.PrivateID = "github 42"
	if err := badID.Validate(); err == nil {
		t.Fatalf("malformed privateID accepted")
	}

	backwards := ok
	backwards.Date = &Dates{Created: "2024-01-01T00:00:00Z", LastModified: "2020-01-01T00:00:00Z"}
	if err := backwards.Validate(); err == nil {
		t.Fatalf("lastModified before created accepted")
	}

	errored := Record{Name: "broken", ProcessingError: "boom"}
	if err := errored.Validate(); err != nil {
		t.Fatalf("errored placeholder rejected: %v", err)
	}
}
