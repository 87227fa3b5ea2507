// Package classify assigns each repository its usage type.
//
// The cascade is fixed: an explicit README exemption marker wins, then the
// non-code language heuristic, then AI exploratory detection, then AI general
// exemption inference, and finally the visibility/license default. Each stage
// either decides and stops or falls through to the next
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/markers"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

// nonCodeLanguages are the languages that cannot make a repository "code".
// A repository whose every detected language is in this set is exempt as
// non-code; an empty language list counts as None
var nonCodeLanguages = map[string]struct{}{
	"none": {}, "markdown": {}, "text": {}, "html": {}, "css": {},
	"xml": {}, "yaml": {}, "json": {}, "shell": {}, "batchfile": {},
	"powershell": {}, "dockerfile": {}, "makefile": {}, "cmake": {},
	"tex": {}, "roff": {}, "csv": {}, "tsv": {},
}

// Exemption provenance recorded in the exemption log's reason column
const (
	ReasonManualMarker   = "readme exemption marker"
	ReasonNonCode        = "non-code repository"
	ReasonAIExploratory  = "ai exploratory detection"
	ReasonAIInference    = "ai exemption inference"
	ReasonDefaultPrivate = "default for private visibility"
)

// AI is the classifier's view of the injected model service. Implementations
// return zero values (never errors) for "no answer"; errors mean the call
// itself failed and the cascade moves on
type AI interface {
	// IsExploratory reports whether the repository is primarily
	// experimental/demo/proof-of-concept work, with the model's reason
	IsExploratory(ctx context.Context, name, description, readme string) (bool, string, error)

	// InferExemption returns one of the assignable exemption codes plus a
	// justification, or ("", "") when the model declines
	InferExemption(ctx context.Context, name, description, readme string) (string, string, error)
}

// Subject is the repository context the cascade reasons over.
// LanguagesKnown gates the non-code stage: platforms without language
// detection must not have their silence read as "no code"
type Subject struct {
	Name           string
	Description    string
	Readme         string
	Languages      []string
	LanguagesKnown bool
	Visibility     string
	HasLicense     bool
	EmptyRepo      bool
	Markers        markers.Markers
}

// Result is the cascade outcome; Reason carries provenance for the
// exemption log and is empty for non-exempt outcomes
type Result struct {
	UsageType     string
	ExemptionText string
	Reason        string
}

// Classify runs the cascade for one repository. ai may be nil (stages 3 and 4
// are skipped). Callers must not invoke it when a cached usage type exists
func Classify(ctx context.Context, s Subject, ai AI) Result {
	log := logger.C(ctx)

	// 1. manual marker: a valid code plus a justification line
	if code := s.Markers.ExemptionCode; code != "" {
		if catalog.IsValidExemptionCode(code) && s.Markers.ExemptionJustification != "" {
			return Result{UsageType: code, ExemptionText: s.Markers.ExemptionJustification, Reason: ReasonManualMarker}
		}
		log.Warn().Str("repo", s.Name).Str("code", code).
			Bool("has_justification", s.Markers.ExemptionJustification != "").
			Msg("readme exemption marker ignored")
	}

	// 2. non-code heuristic. Empty repositories have no content and count as
	// non-code regardless of language support
	if s.EmptyRepo || (s.LanguagesKnown && AllNonCode(s.Languages)) {
		return Result{UsageType: catalog.UsageExemptNonCode, ExemptionText: nonCodeText(s.Languages), Reason: ReasonNonCode}
	}

	// 3 + 4. AI stages; skipped for empty repositories
	if ai != nil && !s.EmptyRepo {
		if expl, why, err := ai.IsExploratory(ctx, s.Name, s.Description, s.Readme); err != nil {
			log.Warn().Err(err).Str("repo", s.Name).Msg("exploratory check failed, continuing cascade")
		} else if expl {
			if why == "" {
				why = "Identified as experimental/demo/proof-of-concept work"
			}
			return Result{UsageType: catalog.UsageExemptByCIO, ExemptionText: why, Reason: ReasonAIExploratory}
		}

		if code, text, err := ai.InferExemption(ctx, s.Name, s.Description, s.Readme); err != nil {
			log.Warn().Err(err).Str("repo", s.Name).Msg("exemption inference failed, continuing cascade")
		} else if code != "" {
			if catalog.IsValidExemptionCode(code) && text != "" {
				return Result{UsageType: code, ExemptionText: text, Reason: ReasonAIInference}
			}
			log.Warn().Str("repo", s.Name).Str("code", code).Msg("model returned an invalid exemption, discarded")
		}
	}

	// 5. default by visibility and license
	if catalog.IsPrivateVisibility(s.Visibility) {
		return Result{UsageType: catalog.UsageGovernmentWideReuse}
	}
	if s.HasLicense {
		return Result{UsageType: catalog.UsageOpenSource}
	}
	return Result{UsageType: catalog.UsageGovernmentWideReuse}
}

// AllNonCode reports whether every detected language is in the non-code set.
// An empty list counts as non-code (the platform reported no languages)
func AllNonCode(langs []string) bool {
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if _, ok := nonCodeLanguages[strings.ToLower(strings.TrimSpace(l))]; !ok {
			return false
		}
	}
	return true
}

func nonCodeText(langs []string) string {
	if len(langs) == 0 {
		return "Automatically flagged as non-code: the repository reports no code languages"
	}
	return fmt.Sprintf(
		"Automatically flagged as non-code: detected languages (%s) contain no source code",
		strings.Join(langs, ", "),
	)
}
