// Package service orchestrates a scan: paced enumeration, a bounded worker
// pool, the per-repository pipeline, and the per-target intermediate file
package service

import (
	"context"
	"sync"
	"time"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/orgs"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/retry"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/scanner/domain"
)

// Config bundles the per-run scanner knobs
type Config struct {
	OutputDir      string
	Workers        int
	Limit          int
	LaborEnabled   bool
	HoursPerCommit float64
	LaborCommitCap int
	ContactDomain  string

	Pacing Pacing
	Policy scm.EnumPolicy
	Retry  retry.Policy
}

// Service scans targets on one platform. The repository limit is shared
// across every target the service scans
type Service struct {
	adapter   domain.Adapter
	ai        domain.AI // nil when the model service is off
	resolver  *orgs.Resolver
	finalizer *Finalizer
	cfg       Config
	log       logger.Logger

	mu      sync.Mutex
	counted int

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New wires a scanner service; ai may be nil
func New(adapter domain.Adapter, ai domain.AI, resolver *orgs.Resolver, fin *Finalizer, cfg Config) *Service {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Service{
		adapter:   adapter,
		ai:        ai,
		resolver:  resolver,
		finalizer: fin,
		cfg:       cfg,
		log:       *logger.Named("scanner"),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// ScanTarget processes one target end to end and writes its intermediate
// file. Enumeration and write failures fail the target; per-repository
// failures only mark their records
func (s *Service) ScanTarget(ctx context.Context, target string) (domain.TargetResult, error) {
	started := s.now()
	platform := s.adapter.Platform()
	out := domain.TargetResult{Platform: platform, Target: target}
	log := s.log.With().Str("platform", platform).Str("target", target).Logger()

	outPath := IntermediateFile(s.cfg.OutputDir, platform, target)
	out.Output = outPath
	cache, err := LoadCache(outPath)
	if err != nil {
		log.Warn().Err(err).Msg("prior intermediate unreadable, scanning cold")
	} else if cache.Len() > 0 {
		log.Info().Int("records", cache.Len()).Msg("prior intermediate loaded")
	}

	var stubs []scm.Stub
	err = retry.Execute(ctx, s.cfg.Retry, "enumerate", func(ctx context.Context) error {
		ss, e := s.adapter.EnumerateStubs(ctx, target)
		stubs = ss
		return e
	})
	if err != nil {
		return out, perr.WithOp(err, "enumerate "+target)
	}
	out.Enumerated = len(stubs)

	kept, skipped := s.cfg.Policy.Apply(stubs)
	out.Kept = len(kept)
	out.Skipped = skipped
	for reason, n := range skipped {
		log.Info().Str("reason", reason).Int("count", n).Msg("repositories filtered")
	}
	if len(kept) == 0 {
		log.Info().Msg("nothing to scan")
		return out, WriteIntermediate(outPath, nil)
	}

	likelyCached := 0
	for _, st := range kept {
		if cache.Contains(st) {
			likelyCached++
		}
	}
	estimated := EstimateCalls(len(kept), likelyCached, s.cfg.LaborEnabled)

	status := s.adapter.RateLimit(ctx)
	baseDelay := s.cfg.Pacing.InterSubmissionDelay(status, estimated, s.cfg.Workers, s.now())
	postDelay := s.cfg.Pacing.DynamicPostCallDelay(len(kept), s.cfg.Workers)
	if postDelay > 0 {
		s.adapter.SetPostCallDelay(func(ctx context.Context) { _ = s.sleep(ctx, postDelay) })
	}
	log.Info().
		Int("repos", len(kept)).
		Int("likely_cached", likelyCached).
		Int("estimated_calls", estimated).
		Dur("inter_submission_delay", baseDelay).
		Dur("post_call_delay", postDelay).
		Msg("scan planned")

	jobs := make(chan job, s.cfg.Workers+2)
	results := make(chan result, s.cfg.Workers+2)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- s.processRepository(ctx, j)
			}
		}()
	}

	// single paced producer: probe, decide the submission delay, sleep, submit
	go func() {
		defer close(jobs)
		for _, stub := range kept {
			if !s.admitOne() {
				log.Info().Int("limit", s.cfg.Limit).Msg("repository limit reached, submissions stopped")
				return
			}
			j := s.peek(ctx, stub, target, cache, baseDelay)
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() { wg.Wait(); close(results) }()

	records := make([]catalog.Record, 0, len(kept))
	for r := range results {
		records = append(records, r.rec)
		switch r.kind {
		case kindCached:
			out.CacheHits++
		case kindEmpty:
			out.Empty++
		case kindErrored:
			out.Errored++
		default:
			out.Processed++
		}
	}

	if err := WriteIntermediate(outPath, records); err != nil {
		return out, err
	}
	out.Duration = s.now().Sub(started)
	log.Info().
		Int("processed", out.Processed).
		Int("cache_hits", out.CacheHits).
		Int("empty", out.Empty).
		Int("errored", out.Errored).
		Dur("elapsed", out.Duration).
		Msg("target complete")
	return out, nil
}

// peek probes the current commit, matches it against the cache, and sleeps
// the planned delay before the job is submitted. Cache hits shrink the sleep
// only when the planned delay is large enough to matter
func (s *Service) peek(ctx context.Context, stub scm.Stub, target string, cache *Cache, base time.Duration) job {
	j := job{stub: stub, target: target}

	if stub.SizeZero {
		j.empty = true
	} else {
		var ref *scm.CommitRef
		err := retry.Execute(ctx, s.cfg.Retry, "current commit", func(ctx context.Context) error {
			r, e := s.adapter.FetchCurrentCommit(ctx, stub)
			ref = r
			return e
		})
		switch {
		case err != nil && perr.IsEmptyRepo(err):
			j.empty = true
		case err != nil:
			s.log.Warn().Err(err).Str("repo", stub.Slug()).Msg("commit probe failed, cache bypassed")
		case ref == nil:
			j.empty = true
		default:
			j.sha = ref.SHA
		}
	}

	delay := base
	if !j.empty && j.sha != "" {
		if rec, ok := cache.Lookup(stub, j.sha); ok {
			j.cached = rec
			if base > s.cfg.Pacing.PeekThreshold {
				delay = s.cfg.Pacing.CacheHitDelay
			}
		}
	}
	_ = s.sleep(ctx, delay)
	return j
}

// admitOne consumes one slot of the shared repository limit; zero or
// negative limits admit everything
func (s *Service) admitOne() bool {
	if s.cfg.Limit <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counted >= s.cfg.Limit {
		return false
	}
	s.counted++
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
