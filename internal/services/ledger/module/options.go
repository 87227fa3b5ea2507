package module

import "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/config"

// Options locates the two side-car files under the output directory
type Options struct {
	OutputDir     string
	MappingFile   string
	ExemptionFile string
}

// FromConfig reads the side-car locations from the environment
func FromConfig(cfg config.Conf) Options {
	return Options{
		OutputDir:     cfg.MayString("OutputDir", "./output"),
		MappingFile:   cfg.MayString("PrivateIDCSVFile", "privateid_mapping.csv"),
		ExemptionFile: cfg.MayString("ExemptedCSVFile", "exempted_log.csv"),
	}
}
