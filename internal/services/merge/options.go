package merge

import (
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/config"
)

// Options locates the artifacts the merge consumes and produces. File names
// are joined under OutputDir
type Options struct {
	OutputDir     string
	CatalogFile   string
	Agency        string
	MappingFile   string
	ExemptionFile string
}

// FromConfig reads the merge surface from the environment
func FromConfig(cfg config.Conf) Options {
	return Options{
		OutputDir:     cfg.MayString("OutputDir", "./output"),
		CatalogFile:   cfg.MayString("catalogJsonFile", "code.json"),
		Agency:        cfg.MayString("AGENCY_NAME", "CDC"),
		MappingFile:   cfg.MayString("PrivateIDCSVFile", "privateid_mapping.csv"),
		ExemptionFile: cfg.MayString("ExemptedCSVFile", "exempted_log.csv"),
	}
}
