package scm

import (
	"testing"
	"time"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
)

func TestEnumPolicyAdmit(t *testing.T) {
	cutoff := time.Date(2021, 4, 21, 0, 0, 0, 0, time.UTC)
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	p := EnumPolicy{PrivateFilterDate: cutoff, CreatedAfter: created}

	cases := []struct {
		name   string
		stub   Stub
		admit  bool
		reason string
	}{
		{
			name:   "fork always skipped",
			stub:   Stub{Fork: true, Visibility: catalog.VisibilityPublic, CreatedAt: created.AddDate(1, 0, 0)},
			admit:  false,
			reason: SkipFork,
		},
		{
			name: "stale private skipped",
			stub: Stub{
				Visibility:     catalog.VisibilityPrivate,
				CreatedAt:      created.AddDate(0, 1, 0),
				LastActivityAt: cutoff.AddDate(0, -1, 0),
			},
			admit:  false,
			reason: SkipPrivateStale,
		},
		{
			name: "stale internal skipped",
			stub: Stub{
				Visibility:     catalog.VisibilityInternal,
				CreatedAt:      created.AddDate(0, 1, 0),
				LastActivityAt: cutoff.AddDate(0, 0, -1),
			},
			admit:  false,
			reason: SkipPrivateStale,
		},
		{
			name: "active private kept",
			stub: Stub{
				Visibility:     catalog.VisibilityPrivate,
				CreatedAt:      created.AddDate(0, 1, 0),
				LastActivityAt: cutoff.AddDate(1, 0, 0),
			},
			admit: true,
		},
		{
			name: "stale public kept",
			stub: Stub{
				Visibility:     catalog.VisibilityPublic,
				CreatedAt:      created.AddDate(0, 1, 0),
				LastActivityAt: cutoff.AddDate(0, -6, 0),
			},
			admit: true,
		},
		{
			name:   "created before cutoff skipped",
			stub:   Stub{Visibility: catalog.VisibilityPublic, CreatedAt: created.AddDate(-1, 0, 0)},
			admit:  false,
			reason: SkipCreatedBefore,
		},
		{
			name: "missing activity date kept",
			stub: Stub{Visibility: catalog.VisibilityPrivate, CreatedAt: created.AddDate(0, 1, 0)},
			admit: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, why := p.Admit(tc.stub)
			if ok != tc.admit {
				t.Fatalf("admit = %v, want %v", ok, tc.admit)
			}
			if why != tc.reason {
				t.Fatalf("reason = %q, want %q", why, tc.reason)
			}
		})
	}
}

func TestEnumPolicyZeroValuesDisableFilters(t *testing.T) {
	var p EnumPolicy
	s := Stub{
		Visibility:     catalog.VisibilityPrivate,
		CreatedAt:      time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		LastActivityAt: time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if ok, why := p.Admit(s); !ok {
		t.Fatalf("zero policy must admit everything non-fork, got %q", why)
	}
}

func TestEnumPolicyApplyCounts(t *testing.T) {
	cutoff := time.Date(2021, 4, 21, 0, 0, 0, 0, time.UTC)
	p := EnumPolicy{PrivateFilterDate: cutoff}

	stubs := []Stub{
		{Name: "keep", Visibility: catalog.VisibilityPublic},
		{Name: "fork1", Fork: true},
		{Name: "fork2", Fork: true},
		{Name: "stale", Visibility: catalog.VisibilityPrivate, LastActivityAt: cutoff.AddDate(-1, 0, 0)},
	}

	kept, skipped := p.Apply(stubs)
	if len(kept) != 1 || kept[0].Name != "keep" {
		t.Fatalf("kept = %+v", kept)
	}
	if skipped[SkipFork] != 2 || skipped[SkipPrivateStale] != 1 {
		t.Fatalf("skipped = %v", skipped)
	}
}

func TestStubSlugAndAlias(t *testing.T) {
	s := Stub{Org: "CDCgov", Name: "Data-Tools"}
	if s.Slug() != "CDCgov/Data-Tools" {
		t.Fatalf("slug = %q", s.Slug())
	}
	if s.CacheAlias() != "cdcgov/data-tools" {
		t.Fatalf("alias = %q", s.CacheAlias())
	}
	s.FullName = "CDCgov/data-tools"
	if s.Slug() != "CDCgov/data-tools" {
		t.Fatalf("full name should win, slug = %q", s.Slug())
	}
}

func TestCodeownersPathsPerPlatform(t *testing.T) {
	for platform, want := range map[string]string{
		PlatformGitLab: ".gitlab/CODEOWNERS",
		PlatformAzure:  ".azuredevops/CODEOWNERS",
	} {
		found := false
		for _, p := range CodeownersPaths(platform) {
			if p == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s paths missing %s: %v", platform, want, CodeownersPaths(platform))
		}
	}
	for _, p := range CodeownersPaths(PlatformGitHub) {
		if p == ".gitlab/CODEOWNERS" || p == ".azuredevops/CODEOWNERS" {
			t.Fatalf("github paths leaked a foreign convention: %v", CodeownersPaths(PlatformGitHub))
		}
	}
}
