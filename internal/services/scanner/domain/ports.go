// Package domain declares the scanner's view of the platform adapters, the
// model service, and the ledger side-cars
package domain

import (
	"context"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	ledger "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/ledger/domain"
)

// Adapter is the per-platform surface the orchestrator drives. The GitHub,
// GitLab, and Azure DevOps adapters all satisfy it
type Adapter interface {
	Platform() string
	SetPostCallDelay(func(context.Context))
	EnumerateStubs(ctx context.Context, target string) ([]scm.Stub, error)
	FetchMetadata(ctx context.Context, stub scm.Stub) (*scm.Meta, error)
	FetchReadme(ctx context.Context, stub scm.Stub, meta *scm.Meta) (scm.Content, error)
	FetchCodeowners(ctx context.Context, stub scm.Stub, meta *scm.Meta) (scm.Content, error)
	FetchCurrentCommit(ctx context.Context, stub scm.Stub) (*scm.CommitRef, error)
	FetchCommitHistory(ctx context.Context, stub scm.Stub, branch string, capN int) ([]scm.Commit, error)
	FetchTags(ctx context.Context, stub scm.Stub) ([]string, error)
	RateLimit(ctx context.Context) *scm.RateStatus
}

// AI is the optional model service. Implementations return zero values for
// "no answer"; Enabled reports the combined configured/auto-disabled state
type AI interface {
	Enabled() bool
	InferDescription(ctx context.Context, name, description string, languages []string, readme string) (string, error)
	InferExemption(ctx context.Context, name, description, readme string) (string, string, error)
	IsExploratory(ctx context.Context, name, description, readme string) (bool, string, error)
	InferOrganization(ctx context.Context, name, description, readme string, known []string) (string, error)
}

// Side-car ports, owned by the ledger service
type (
	MappingPort   = ledger.MappingPort
	ExemptionPort = ledger.ExemptionPort
)
