// Package module assembles a scanner service from an adapter, the optional
// model service, the org resolver, and the ledger side-cars
package module

import (
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/orgs"
	ledgermod "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/ledger/module"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/scanner/domain"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/scanner/service"
)

// New builds the scanner. ai may be nil; the ledger must be open
func New(adapter domain.Adapter, ai domain.AI, resolver *orgs.Resolver, led *ledgermod.Ledger, opts Options) *service.Service {
	fin := service.NewFinalizer(led.Mapping, led.Exemptions)
	fin.Agency = opts.AgencyName
	fin.InstructionsURL = opts.InstructionsURL
	fin.ExemptedNoticeURL = opts.ExemptedNoticeURL
	fin.PrivateContactEmail = opts.PrivateContactEmail
	fin.DefaultContactEmail = opts.DefaultContactEmail
	fin.InactivityYears = opts.InactivityYears

	return service.New(adapter, ai, resolver, fin, service.Config{
		OutputDir:      opts.OutputDir,
		Workers:        opts.Workers,
		Limit:          opts.Limit,
		LaborEnabled:   opts.LaborEnabled,
		HoursPerCommit: opts.HoursPerCommit,
		LaborCommitCap: opts.LaborCommitCap,
		ContactDomain:  opts.ContactDomain,
		Pacing:         opts.Pacing,
		Policy:         opts.Policy,
		Retry:          opts.Retry,
	})
}
