package module

import (
	"strings"
	"time"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/config"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/retry"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/scanner/service"
)

// Options carries every scanner knob resolved from the environment
type Options struct {
	OutputDir string
	Workers   int
	Limit     int

	LaborEnabled   bool
	HoursPerCommit float64
	LaborCommitCap int

	AgencyName          string
	InstructionsURL     string
	ExemptedNoticeURL   string
	PrivateContactEmail string
	DefaultContactEmail string
	ContactDomain       string
	InactivityYears     int

	Pacing service.Pacing
	Policy scm.EnumPolicy
	Retry  retry.Policy
}

// FromConfig reads the scanner environment. platform selects the
// per-platform post-call delay variable
func FromConfig(cfg config.Conf, platform string) Options {
	defaultContact := cfg.MayString("DEFAULT_CONTACT_EMAIL", "shareit@cdc.gov")
	return Options{
		OutputDir: cfg.MayString("OutputDir", "./output"),
		Workers:   cfg.MayInt("SCANNER_MAX_WORKERS", 5),
		Limit:     cfg.MayInt("LimitNumberOfRepos", 0),

		LaborEnabled:   cfg.MayBool("ENABLE_LABOR_HOURS", true),
		HoursPerCommit: cfg.MayFloat64("HOURS_PER_COMMIT", 0.5),
		LaborCommitCap: cfg.MayInt("LABOR_HOURS_COMMIT_CAP", 1000),

		AgencyName:          cfg.MayString("AGENCY_NAME", "CDC"),
		InstructionsURL:     cfg.MayString("INSTRUCTIONS_PDF_URL", ""),
		ExemptedNoticeURL:   cfg.MayString("EXEMPTED_NOTICE_PDF_URL", ""),
		PrivateContactEmail: cfg.MayString("PRIVATE_REPO_CONTACT_EMAIL", defaultContact),
		DefaultContactEmail: defaultContact,
		ContactDomain:       cfg.MayString("CONTACT_EMAIL_DOMAIN", "cdc.gov"),
		InactivityYears:     cfg.MayInt("INACTIVITY_THRESHOLD_YEARS", 2),

		Pacing: service.Pacing{
			SafetyFactor:     cfg.MayFloat64("API_SAFETY_FACTOR", 0.8),
			MinDelay:         cfg.MaySeconds("MIN_INTER_REPO_DELAY_SECONDS", 100*time.Millisecond),
			MaxDelay:         cfg.MaySeconds("MAX_INTER_REPO_DELAY_SECONDS", 30*time.Second),
			PeekThreshold:    cfg.MaySeconds("PEEK_AHEAD_THRESHOLD_DELAY_SECONDS", 500*time.Millisecond),
			CacheHitDelay:    cfg.MaySeconds("CACHE_HIT_SUBMISSION_DELAY_SECONDS", 50*time.Millisecond),
			DynamicThreshold: cfg.MayInt("DYNAMIC_DELAY_THRESHOLD_REPOS", 100),
			DynamicScale:     cfg.MayFloat64("DYNAMIC_DELAY_SCALE_FACTOR", 1.5),
			DynamicMax:       cfg.MaySeconds("DYNAMIC_DELAY_MAX_SECONDS", time.Second),
			PostCallDelay:    cfg.MaySeconds(strings.ToUpper(platform)+"_POST_API_CALL_DELAY_SECONDS", 0),
		},

		Policy: scm.EnumPolicy{
			PrivateFilterDate: cfg.MayDate("FIXED_PRIVATE_REPO_FILTER_DATE", time.Date(2021, 4, 21, 0, 0, 0, 0, time.UTC)),
			CreatedAfter:      cfg.MayDate("REPOS_CREATED_AFTER_DATE", time.Time{}),
		},

		Retry: retry.Policy{
			MaxRetries:   cfg.MayInt("RETRY_MAX_RETRIES", 5),
			InitialDelay: cfg.MaySeconds("RETRY_INITIAL_DELAY_SECONDS", time.Second),
			Backoff:      cfg.MayFloat64("RETRY_BACKOFF_FACTOR", 2.0),
			MaxDelay:     cfg.MaySeconds("RETRY_MAX_DELAY_SECONDS", 900*time.Second),
		},
	}
}
