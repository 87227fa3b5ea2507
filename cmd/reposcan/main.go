// Command reposcan inventories source-code repositories across GitHub,
// GitLab, and Azure DevOps and assembles the agency's code.json catalog.
//
//	reposcan github --orgs CDCgov,cdcent --gh-tk TOKEN
//	reposcan gitlab --groups epi --gitlab-url https://gitlab.cdc.gov --gl-tk TOKEN
//	reposcan azure  --targets Org/Project --az-tk PAT
//	reposcan merge
//	reposcan version
//
// Scan subcommands write one intermediate file per target; merge unions the
// intermediates into the final catalog. Flags override their matching
// environment variables; a .env file in the working directory is loaded first
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/ai/gemini"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm/azdo"
	ghadapter "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm/github"
	gladapter "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm/gitlab"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/orgs"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/version"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/config"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
	ledgermod "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/ledger/module"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/merge"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/scanner/domain"
	scannermod "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/scanner/module"
)

func main() {
	// .env loads before the logger so LOG_LEVEL/LOG_FORMAT apply to it
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:]))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: reposcan <command> [flags]

commands:
  github   scan GitHub organizations      --orgs O1,O2 [--github-ghes-url URL] --gh-tk TOKEN [--limit N]
  gitlab   scan GitLab groups             --groups G1,G2 [--gitlab-url URL] --gl-tk TOKEN [--limit N]
  azure    scan Azure DevOps projects     --targets Org/Proj,... [--az-org ORG] [--az-url URL] [--az-tk PAT | --az-cid ID --az-cs SECRET --az-tid TENANT] [--limit N]
  merge    union intermediates into the final catalog
  version  print build information`)
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}
	switch args[0] {
	case "github", "gitlab", "azure":
		return runScan(args[0], args[1:])
	case "merge":
		return runMerge()
	case "version":
		bi := version.Info()
		fmt.Printf("%s %s (commit %s, built %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
		return 0
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "reposcan: unknown command %q\n\n", args[0])
		usage()
		return 1
	}
}

// scanArgs is the per-platform flag surface, defaulted from the environment
// so explicit flags always win
type scanArgs struct {
	targets    []string
	token      string
	baseURL    string
	defaultOrg string
	clientID   string
	secret     string
	tenantID   string
	limit      int
}

func parseScanArgs(platform string, args []string, cfg config.Conf) (scanArgs, error) {
	fs := flag.NewFlagSet(platform, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var rawTargets, token, baseURL, defaultOrg, clientID, secret, tenantID *string
	switch platform {
	case scm.PlatformGitHub:
		rawTargets = fs.String("orgs", cfg.MayString("GITHUB_ORGS", ""), "comma separated GitHub organizations")
		token = fs.String("gh-tk", cfg.MayString("GITHUB_TOKEN", ""), "GitHub token")
		baseURL = fs.String("github-ghes-url", cfg.MayString("GITHUB_GHES_URL", ""), "GitHub Enterprise Server base URL")
	case scm.PlatformGitLab:
		rawTargets = fs.String("groups", cfg.MayString("GITLAB_GROUPS", ""), "comma separated GitLab groups")
		token = fs.String("gl-tk", cfg.MayString("GITLAB_TOKEN", ""), "GitLab token")
		baseURL = fs.String("gitlab-url", cfg.MayString("GITLAB_URL", ""), "self-managed GitLab base URL")
	case scm.PlatformAzure:
		rawTargets = fs.String("targets", cfg.MayString("AZURE_DEVOPS_TARGETS", ""), "comma separated Org/Project pairs")
		token = fs.String("az-tk", cfg.MayString("AZURE_DEVOPS_TOKEN", ""), "Azure DevOps personal access token")
		baseURL = fs.String("az-url", cfg.MayString("AZURE_DEVOPS_API_URL", ""), "Azure DevOps Server base URL")
		defaultOrg = fs.String("az-org", cfg.MayString("AZURE_DEVOPS_ORG", ""), "organization assumed for bare project targets")
		clientID = fs.String("az-cid", cfg.MayString("AZURE_CLIENT_ID", ""), "service principal client id")
		secret = fs.String("az-cs", cfg.MayString("AZURE_CLIENT_SECRET", ""), "service principal client secret")
		tenantID = fs.String("az-tid", cfg.MayString("AZURE_TENANT_ID", ""), "service principal tenant id")
	}
	limit := fs.Int("limit", cfg.MayInt("LimitNumberOfRepos", 0), "stop after N repositories, 0 or less scans everything")

	if err := fs.Parse(args); err != nil {
		return scanArgs{}, err
	}

	a := scanArgs{targets: splitCSV(*rawTargets), token: *token, limit: *limit}
	if baseURL != nil {
		a.baseURL = *baseURL
	}
	if clientID != nil {
		a.clientID = *clientID
		a.secret = *secret
		a.tenantID = *tenantID
	}
	if defaultOrg != nil && *defaultOrg != "" {
		a.defaultOrg = *defaultOrg
		for i, t := range a.targets {
			if !strings.Contains(t, "/") {
				a.targets[i] = a.defaultOrg + "/" + t
			}
		}
	}
	return a, nil
}

func runScan(platform string, args []string) int {
	l := logger.Get()
	cfg := config.New()

	a, err := parseScanArgs(platform, args, cfg)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}
	if len(a.targets) == 0 {
		l.Error().Str("platform", platform).Msg("no targets: pass the target flag or set the matching environment variable")
		return 1
	}

	insecure := cfg.MayBool("DISABLE_SSL_VERIFICATION", false)
	timeout := cfg.MaySeconds("HTTP_TIMEOUT_SECONDS", 30*time.Second)

	adapter, err := buildAdapter(platform, a, insecure, timeout)
	if err != nil {
		l.Error().Err(err).Str("platform", platform).Msg("adapter setup failed")
		return 1
	}

	led, err := ledgermod.Open(ledgermod.FromConfig(cfg))
	if err != nil {
		l.Error().Err(err).Msg("side-car ledgers unavailable")
		return 1
	}

	svc, aiClose := buildAI(cfg, insecure)
	if aiClose != nil {
		defer aiClose()
	}
	var ai domain.AI
	var orgAI orgs.AI
	if svc != nil {
		ai = svc
		orgAI = svc
	}
	resolver := orgs.NewResolver(orgs.MustLoad(), orgAI)

	opts := scannermod.FromConfig(cfg, platform)
	opts.Limit = a.limit
	scanner := scannermod.New(adapter, ai, resolver, led, opts)

	runID := uuid.NewString()
	started := time.Now()
	failures := 0
	var processed, cached, empty, errored int

	for _, target := range a.targets {
		ctx := logger.WithScan(context.Background(), runID, platform, target)
		res, err := scanner.ScanTarget(ctx, target)
		if err != nil {
			l.Error().Err(err).Str("target", target).Msg("target failed")
			failures++
			continue
		}
		processed += res.Processed
		cached += res.CacheHits
		empty += res.Empty
		errored += res.Errored
	}

	if err := led.Close(); err != nil {
		l.Error().Err(err).Msg("side-car save failed")
		failures++
	}

	l.Info().
		Str("run_id", runID).
		Str("platform", platform).
		Int("targets", len(a.targets)).
		Int("target_failures", failures).
		Int("processed", processed).
		Int("cache_hits", cached).
		Int("empty", empty).
		Int("repo_errors", errored).
		Dur("elapsed", time.Since(started)).
		Msg("scan finished")

	if failures > 0 {
		return 1
	}
	return 0
}

func buildAdapter(platform string, a scanArgs, insecure bool, timeout time.Duration) (domain.Adapter, error) {
	switch platform {
	case scm.PlatformGitHub:
		return ghadapter.New(ghadapter.Options{
			Token:    a.token,
			BaseURL:  a.baseURL,
			Timeout:  timeout,
			Insecure: insecure,
		})
	case scm.PlatformGitLab:
		return gladapter.New(gladapter.Options{
			Token:    a.token,
			BaseURL:  a.baseURL,
			Timeout:  timeout,
			Insecure: insecure,
		})
	default:
		return azdo.New(azdo.Options{
			PAT:          a.token,
			ClientID:     a.clientID,
			ClientSecret: a.secret,
			TenantID:     a.tenantID,
			BaseURL:      a.baseURL,
			Timeout:      timeout,
			Insecure:     insecure,
		})
	}
}

// buildAI starts the model service when AI_ENABLED is set. Setup failures
// log and return nil; the scan degrades to the non-AI cascade
func buildAI(cfg config.Conf, insecure bool) (*gemini.Service, func()) {
	if !cfg.MayBool("AI_ENABLED", false) {
		return nil, nil
	}
	l := logger.Get()
	svc, err := gemini.New(context.Background(), gemini.Options{
		APIKey:              cfg.MayString("GOOGLE_API_KEY", ""),
		Model:               cfg.MayString("AI_MODEL_NAME", gemini.DefaultModel),
		Temperature:         float32(cfg.MayFloat64("AI_TEMPERATURE", 0.2)),
		MaxOutputTokens:     int32(cfg.MayInt("AI_MAX_OUTPUT_TOKENS", 256)),
		MaxInputTokens:      cfg.MayInt("MAX_TOKENS", 8000),
		DelayEnabled:        cfg.MayBool("AI_DELAY_ENABLED", true),
		Delay:               cfg.MaySeconds("AI_DELAY_SECONDS", 500*time.Millisecond),
		OrganizationEnabled: cfg.MayBool("AI_ORGANIZATION_ENABLED", true),
		InsecureTransport:   insecure,
	})
	if err != nil {
		l.Warn().Err(err).Msg("model service unavailable, scanning without it")
		return nil, nil
	}
	return svc, func() {
		if err := svc.Close(); err != nil {
			l.Warn().Err(err).Msg("model service close failed")
		}
	}
}

func runMerge() int {
	l := logger.Get()
	m := merge.New(merge.FromConfig(config.New()))
	res, err := m.Run()
	if err != nil {
		l.Error().Err(err).Msg("merge failed")
		return 1
	}
	l.Info().
		Int("intermediates", res.Intermediates).
		Int("projects", res.Projects).
		Int("errored", res.Errored).
		Str("catalog", res.Output).
		Msg("merge finished")
	return 0
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
