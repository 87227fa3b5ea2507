// Package gemini implements the scanner's AI port on Google's Gemini models.
// Every operation is best-effort: a disabled or failing service answers with
// zero values and the classification cascade moves on without it
package gemini

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

const (
	// DefaultModel balances cost against quality for short classification calls
	DefaultModel = "gemini-1.5-flash"

	defaultMaxOutputTokens = 256
	defaultMaxInputTokens  = 8000

	// bytesPerToken approximates the model tokenizer for input truncation
	bytesPerToken = 4
)

// Options configures the service
type Options struct {
	// APIKey is the Google AI Studio key; required
	APIKey string

	// Model overrides DefaultModel
	Model string

	Temperature     float32
	MaxOutputTokens int32

	// MaxInputTokens bounds the prompt; inputs are cut at 4 bytes per token
	MaxInputTokens int

	// DelayEnabled inserts Delay after every model call
	DelayEnabled bool
	Delay        time.Duration

	// OrganizationEnabled gates InferOrganization separately
	OrganizationEnabled bool

	// InsecureTransport reports that TLS verification was switched off for
	// the platform clients. The SDK transport cannot follow, so the service
	// starts disabled
	InsecureTransport bool
}

// Service talks to one generative model. Safe for concurrent use
type Service struct {
	client *genai.Client
	model  *genai.GenerativeModel
	opts   Options
	log    logger.Logger

	// disabled flips once on SSL or credential failures and stays set for
	// the remainder of the run
	disabled atomic.Bool

	// generate is seamed for tests
	generate func(ctx context.Context, prompt string) (string, error)
}

// New builds the SDK client. The connection is lazy; a bad key surfaces on
// the first call and disables the service
func New(ctx context.Context, o Options) (*Service, error) {
	if o.APIKey == "" {
		return nil, perr.InvalidArgf("gemini: api key required")
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = defaultMaxOutputTokens
	}
	if o.MaxInputTokens <= 0 {
		o.MaxInputTokens = defaultMaxInputTokens
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(o.APIKey))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "gemini: client setup")
	}
	model := client.GenerativeModel(o.Model)
	model.SetTemperature(o.Temperature)
	model.SetMaxOutputTokens(o.MaxOutputTokens)

	s := &Service{client: client, model: model, opts: o, log: *logger.Named("gemini")}
	s.generate = s.generateContent

	if o.InsecureTransport {
		s.disabled.Store(true)
		s.log.Warn().Msg("tls verification is off, model calls disabled for this run")
	}
	return s, nil
}

// Close releases the SDK connection
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Enabled reports whether the service still answers
func (s *Service) Enabled() bool { return !s.disabled.Load() }

// InferDescription asks for a short plain-language summary. The model
// answers "N/A" when the input is too thin; that placeholder passes through
func (s *Service) InferDescription(ctx context.Context, name, description string, languages []string, readme string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	ans, err := s.generate(ctx, descriptionPrompt(s.input(name, description, languages, readme)))
	if err != nil {
		return "", err
	}
	return ans, nil
}

// InferExemption asks for one assignable exemption code plus justification.
// "None" and malformed answers yield zero values
func (s *Service) InferExemption(ctx context.Context, name, description, readme string) (string, string, error) {
	if !s.Enabled() {
		return "", "", nil
	}
	ans, err := s.generate(ctx, exemptionPrompt(s.input(name, description, nil, readme)))
	if err != nil {
		return "", "", err
	}
	return s.parseExemption(name, ans)
}

// IsExploratory asks whether the repository is experimental/demo/PoC work
func (s *Service) IsExploratory(ctx context.Context, name, description, readme string) (bool, string, error) {
	if !s.Enabled() {
		return false, "", nil
	}
	ans, err := s.generate(ctx, exploratoryPrompt(s.input(name, description, nil, readme)))
	if err != nil {
		return false, "", err
	}
	return s.parseExploratory(name, ans), reasonOf(ans), nil
}

// InferOrganization asks which known organization owns the repository.
// The resolver validates the answer against its acronym table
func (s *Service) InferOrganization(ctx context.Context, name, description, readme string, known []string) (string, error) {
	if !s.Enabled() || !s.opts.OrganizationEnabled {
		return "", nil
	}
	ans, err := s.generate(ctx, organizationPrompt(s.input(name, description, nil, readme), known))
	if err != nil {
		return "", err
	}
	if strings.EqualFold(ans, "none") {
		return "", nil
	}
	return ans, nil
}

// generateContent is the single SDK touchpoint: one call, the post-call
// delay, and failure classification
func (s *Service) generateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	s.delay(ctx)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			s.log.Warn().Msg("prompt blocked by safety settings")
			return "", nil
		}
		if disablingFailure(err) {
			if s.disabled.CompareAndSwap(false, true) {
				s.log.Warn().Err(err).Msg("model unreachable, ai disabled for the remainder of the run")
			}
		}
		return "", perr.Wrapf(err, perr.ErrorCodeAPI, "gemini: generate")
	}
	return responseText(resp), nil
}

func (s *Service) delay(ctx context.Context) {
	if s.opts.DelayEnabled && s.opts.Delay > 0 {
		_ = sleepCtx(ctx, s.opts.Delay)
	}
}

// input assembles and truncates the repository context block shared by all
// prompts
func (s *Service) input(name, description string, languages []string, readme string) string {
	var sb strings.Builder
	sb.WriteString("Repository name: ")
	sb.WriteString(name)
	if description != "" {
		sb.WriteString("\nDescription: ")
		sb.WriteString(description)
	}
	if len(languages) > 0 {
		sb.WriteString("\nLanguages: ")
		sb.WriteString(strings.Join(languages, ", "))
	}
	if readme != "" {
		sb.WriteString("\nREADME:\n")
		sb.WriteString(readme)
	}
	return truncate(sb.String(), s.opts.MaxInputTokens*bytesPerToken)
}

func (s *Service) parseExemption(repo, ans string) (string, string, error) {
	if ans == "" || strings.EqualFold(ans, "none") {
		return "", "", nil
	}
	code, text, ok := strings.Cut(ans, "|")
	if !ok {
		s.log.Warn().Str("repo", repo).Str("answer", ans).Msg("unparseable exemption answer, treated as none")
		return "", "", nil
	}
	code, text = strings.TrimSpace(code), strings.TrimSpace(text)
	if !catalog.IsValidExemptionCode(code) {
		s.log.Warn().Str("repo", repo).Str("code", code).Msg("model returned an unknown exemption code, treated as none")
		return "", "", nil
	}
	return code, text, nil
}

func (s *Service) parseExploratory(repo, ans string) bool {
	switch {
	case strings.HasPrefix(strings.ToUpper(ans), "IS_EXPLORATORY"):
		return true
	case strings.HasPrefix(strings.ToUpper(ans), "NOT_EXPLORATORY"):
		return false
	default:
		if ans != "" {
			s.log.Warn().Str("repo", repo).Str("answer", ans).Msg("unparseable exploratory answer, treated as not exploratory")
		}
		return false
	}
}

// reasonOf returns the text after the first pipe, if any
func reasonOf(ans string) string {
	if _, reason, ok := strings.Cut(ans, "|"); ok {
		return strings.TrimSpace(reason)
	}
	return ""
}

// disablingFailure reports errors that will not heal within this run:
// bad credentials and broken TLS paths
func disablingFailure(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	var cve *tls.CertificateVerificationError
	if errors.As(err, &cve) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "certificate") ||
		strings.Contains(msg, "x509") ||
		strings.Contains(msg, "api key") ||
		strings.Contains(msg, "permission_denied") ||
		strings.Contains(msg, "unauthenticated")
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// truncate cuts at max bytes without splitting a rune
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
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
