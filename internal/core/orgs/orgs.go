// Package orgs resolves the owning organizational unit of a repository
// against the embedded agency org table (acronym -> canonical full name).
//
// Resolution is a fixed cascade: a programmatic token match on the repository
// name, then an explicit README "Organization:" marker, then optional AI
// inference, then canonicalization of full names back to acronyms. Values
// that survive all stages as placeholders are flagged generic so the
// finalizer can substitute the agency name
package orgs

import (
	"context"
	_ "embed"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

//go:embed orgs.json
var embedded []byte

// Unknown is the placeholder organization assigned to records before resolution
const Unknown = "UnknownOrg"

type rawTable struct {
	Version       int               `json:"version"`
	Agency        string            `json:"agency"`
	Organizations map[string]string `json:"organizations"`
}

// Table is the known-org lookup: acronyms to canonical full names and back
type Table struct {
	agency    string
	byAcronym map[string]string // lower acronym -> full name
	byName    map[string]string // lower full name -> lower acronym
}

// Load parses the embedded org table
func Load() (*Table, error) {
	var raw rawTable
	if err := json.Unmarshal(embedded, &raw); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "orgs: embedded table is invalid")
	}
	if len(raw.Organizations) == 0 {
		return nil, perr.Newf(perr.ErrorCodeValidation, "orgs: embedded table has no organizations")
	}
	t := &Table{
		agency:    raw.Agency,
		byAcronym: make(map[string]string, len(raw.Organizations)),
		byName:    make(map[string]string, len(raw.Organizations)),
	}
	for acro, name := range raw.Organizations {
		a := strings.ToLower(strings.TrimSpace(acro))
		if a == "" || strings.TrimSpace(name) == "" {
			return nil, perr.Newf(perr.ErrorCodeValidation, "orgs: blank entry for acronym %q", acro)
		}
		t.byAcronym[a] = name
		t.byName[strings.ToLower(name)] = a
	}
	return t, nil
}

// MustLoad panics when the embedded table does not parse; call at startup
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Agency returns the agency name the table belongs to
func (t *Table) Agency() string { return t.agency }

// FullName looks up the canonical full name for an acronym (case-insensitive)
func (t *Table) FullName(acronym string) (string, bool) {
	n, ok := t.byAcronym[strings.ToLower(strings.TrimSpace(acronym))]
	return n, ok
}

// Acronym looks up the acronym for a canonical full name (case-insensitive)
func (t *Table) Acronym(fullName string) (string, bool) {
	a, ok := t.byName[strings.ToLower(strings.TrimSpace(fullName))]
	return a, ok
}

// Acronyms returns every known acronym, sorted
func (t *Table) Acronyms() []string {
	out := make([]string, 0, len(t.byAcronym))
	for a := range t.byAcronym {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// FullNames returns every canonical full name, sorted; used to seed AI prompts
func (t *Table) FullNames() []string {
	out := make([]string, 0, len(t.byAcronym))
	for _, n := range t.byAcronym {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Canonicalize maps an acronym or full name to the lowercase acronym.
// Unknown values pass through unchanged
func (t *Table) Canonicalize(v string) string {
	s := strings.TrimSpace(v)
	if _, ok := t.byAcronym[strings.ToLower(s)]; ok {
		return strings.ToLower(s)
	}
	if a, ok := t.byName[strings.ToLower(s)]; ok {
		return a
	}
	return v
}

// AI infers the owning organization from repository context.
// Implementations return the full organization name, or "" when undecided
type AI interface {
	InferOrganization(ctx context.Context, repoName, description, readme string, known []string) (string, error)
}

// Request carries one repository's context through the resolver
type Request struct {
	RepoName string

	// Current is the organization presently on the record (often the scan
	// target's name, which counts as generic)
	Current string

	// MarkerOrganization is the README "Organization:" value, if any
	MarkerOrganization string

	Description string
	Readme      string

	// Generics are extra per-call placeholder identifiers (e.g. the target
	// org/group name) beyond the built-in set
	Generics []string
}

// Resolver runs the resolution cascade for repository records
type Resolver struct {
	table *Table
	ai    AI // nil disables the AI stage
}

// NewResolver builds a Resolver over the given table; ai may be nil
func NewResolver(t *Table, ai AI) *Resolver {
	return &Resolver{table: t, ai: ai}
}

var tokenSplit = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Resolve runs the cascade and returns the resolved organization plus
// whether the value is still a generic placeholder afterwards
func (r *Resolver) Resolve(ctx context.Context, req Request) (string, bool) {
	current := strings.TrimSpace(req.Current)

	// 1. programmatic acronym match on the repo name; only replaces
	// generic/default/unknown values
	if IsGeneric(current, req.Generics...) {
		for _, tok := range tokenSplit.Split(strings.ToLower(req.RepoName), -1) {
			if tok == "" {
				continue
			}
			if full, ok := r.table.FullName(tok); ok {
				current = full
				break
			}
		}
	}

	// 2. explicit README marker always wins over the name heuristic
	if m := strings.TrimSpace(req.MarkerOrganization); m != "" {
		current = m
	}

	// 3. AI inference only when still generic; accept only known values
	if r.ai != nil && IsGeneric(current, req.Generics...) {
		inferred, err := r.ai.InferOrganization(ctx, req.RepoName, req.Description, req.Readme, r.table.FullNames())
		switch {
		case err != nil:
			logger.C(ctx).Warn().Err(err).Str("repo", req.RepoName).Msg("org inference failed, keeping current value")
		case inferred != "":
			if _, ok := r.table.Acronym(inferred); ok {
				current = inferred
			} else if _, ok := r.table.FullName(inferred); ok {
				current = inferred
			} else {
				logger.C(ctx).Debug().Str("repo", req.RepoName).Str("value", inferred).
					Msg("org inference returned an unknown organization, discarded")
			}
		}
	}

	// 4. canonicalize full names back to acronyms
	current = r.table.Canonicalize(current)

	// 5. generic flag for the finalizer
	return current, IsGeneric(current, req.Generics...)
}

// IsGeneric reports whether v is a placeholder rather than a real
// organizational unit. extra values (e.g. the scan target name) also count
func IsGeneric(v string, extra ...string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "", "n/a", "unknown", strings.ToLower(Unknown), "default":
		return true
	}
	for _, e := range extra {
		if s == strings.ToLower(strings.TrimSpace(e)) {
			return true
		}
	}
	return false
}
