// Package markers parses agency compliance markers out of repository READMEs.
//
// Markers are line-anchored, case-insensitive "Key: value" pairs, tolerant of
// the usual markdown decoration (headings, list bullets, bold). They carry the
// manual overrides the classifier and finalizer honor before any heuristic or
// AI inference runs
package markers

import (
	"regexp"
	"strconv"
	"strings"
)

// Markers is everything a README can declare explicitly
type Markers struct {
	Version        string
	Keywords       []string
	Organization   string
	ContactEmails  []string
	ContactName    string
	ContractNumber string

	// Status normalized to a catalog status value ("" when absent or unrecognized)
	Status string

	ExemptionCode          string
	ExemptionJustification string

	LaborHours    float64
	HasLaborHours bool
}

// lineValue builds a line-anchored matcher for one marker key.
// keyPattern is a regexp fragment (already lowercased, no capture groups)
func lineValue(keyPattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[\s#>*_-]*(?:\*\*)?\s*` + keyPattern + `\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.+?)\s*$`)
}

var (
	reVersion       = lineValue(`version`)
	reKeywords      = lineValue(`(?:keywords|tags|topics)`)
	reOrganization  = lineValue(`organization`)
	reContact       = lineValue(`contacts?`)
	reContactName   = lineValue(`contact\s+name`)
	reContract      = lineValue(`contract\s*#`)
	reStatus        = lineValue(`(?:project\s+)?status`)
	reExemption     = lineValue(`exemption`)
	reJustification = lineValue(`exemption\s+justification`)
	reLaborHours    = lineValue(`estimated\s+labor\s+hours`)

	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// statusByMarker maps README status words to catalog status values
var statusByMarker = map[string]string{
	"maintained":   "maintained",
	"active":       "maintained",
	"deprecated":   "deprecated",
	"experimental": "experimental",
	"inactive":     "inactive",
}

// Parse extracts every marker present in the README text
func Parse(readme string) Markers {
	var m Markers
	if strings.TrimSpace(readme) == "" {
		return m
	}

	m.Version = first(reVersion, readme)
	m.Organization = first(reOrganization, readme)
	m.ContactName = first(reContactName, readme)
	m.ContractNumber = first(reContract, readme)

	if kw := first(reKeywords, readme); kw != "" {
		m.Keywords = splitList(kw)
	}

	// "Exemption justification:" also matches the bare "exemption" key, so
	// justification lines are excluded when scanning for the code itself
	m.ExemptionJustification = first(reJustification, readme)
	for _, g := range reExemption.FindAllStringSubmatch(readme, -1) {
		v := strings.TrimSpace(g[1])
		if strings.HasPrefix(strings.ToLower(v), "justification") {
			continue
		}
		m.ExemptionCode = strings.TrimRight(firstWord(v), ".,;")
		break
	}

	if s := first(reStatus, readme); s != "" {
		m.Status = statusByMarker[strings.ToLower(firstWord(s))]
	}

	if h := first(reLaborHours, readme); h != "" {
		if v, err := strconv.ParseFloat(firstWord(h), 64); err == nil && v >= 0 {
			m.LaborHours = v
			m.HasLaborHours = true
		}
	}

	// contact lines may hold several comma separated addresses
	for _, g := range reContact.FindAllStringSubmatch(readme, -1) {
		m.ContactEmails = append(m.ContactEmails, reEmail.FindAllString(g[1], -1)...)
	}
	m.ContactEmails = dedupeLower(m.ContactEmails)

	return m
}

// ExtractEmails returns every address in text whose domain matches, in
// encounter order, lowercased and deduped. domain compares case-insensitively
func ExtractEmails(text, domain string) []string {
	if text == "" {
		return nil
	}
	suffix := "@" + strings.ToLower(strings.TrimPrefix(domain, "@"))
	var out []string
	for _, e := range reEmail.FindAllString(text, -1) {
		if strings.HasSuffix(strings.ToLower(e), suffix) {
			out = append(out, e)
		}
	}
	return dedupeLower(out)
}

// ContactEmails resolves the contact ladder for a repository: explicit
// Contact: markers first, then CODEOWNERS addresses, then a full README scan.
// Only addresses in the given domain qualify
func ContactEmails(parsed Markers, readme, codeowners, domain string) []string {
	suffix := "@" + strings.ToLower(strings.TrimPrefix(domain, "@"))
	var inDomain []string
	for _, e := range parsed.ContactEmails {
		if strings.HasSuffix(e, suffix) {
			inDomain = append(inDomain, e)
		}
	}
	if len(inDomain) > 0 {
		return inDomain
	}
	if got := ExtractEmails(codeowners, domain); len(got) > 0 {
		return got
	}
	return ExtractEmails(readme, domain)
}

func first(re *regexp.Regexp, text string) string {
	if g := re.FindStringSubmatch(text); g != nil {
		return strings.TrimSpace(g[1])
	}
	return ""
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(strings.Trim(strings.TrimSpace(p), "*_`")); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func dedupeLower(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		v := strings.ToLower(strings.TrimSpace(s))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
