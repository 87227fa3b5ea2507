// Package module assembles the ledger side-cars from configuration
package module

import (
	"path/filepath"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/ledger/service"
)

// Ledger bundles the files that ride along with the catalog: the private-ID
// mapping and the append-only exemption log
type Ledger struct {
	Mapping    *service.Mapping
	Exemptions *service.ExemptionLog
}

// Open loads or creates both side-cars under the configured output directory
func Open(opts Options) (*Ledger, error) {
	m, err := service.OpenMapping(filepath.Join(opts.OutputDir, opts.MappingFile))
	if err != nil {
		return nil, err
	}
	x, err := service.OpenExemptionLog(filepath.Join(opts.OutputDir, opts.ExemptionFile))
	if err != nil {
		return nil, err
	}
	return &Ledger{Mapping: m, Exemptions: x}, nil
}

// Close persists the mapping and releases the exemption log handle
func (l *Ledger) Close() error {
	saveErr := l.Mapping.Save()
	closeErr := l.Exemptions.Close()
	if saveErr != nil {
		return saveErr
	}
	return closeErr
}
