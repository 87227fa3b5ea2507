package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
)

// newTestService skips the SDK and scripts the model answer
func newTestService(answer string, err error) (*Service, *int) {
	calls := new(int)
	s := &Service{
		opts: Options{MaxInputTokens: 100, OrganizationEnabled: true},
		log:  *logger.Named("gemini"),
	}
	s.generate = func(_ context.Context, _ string) (string, error) {
		*calls++
		return answer, err
	}
	return s, calls
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), Options{}); perr.CodeOf(err) != perr.ErrorCodeInvalidArgument {
		t.Fatalf("err = %v", err)
	}
}

func TestInsecureTransportDisablesUpFront(t *testing.T) {
	s, err := New(context.Background(), Options{APIKey: "k", InsecureTransport: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	if s.Enabled() {
		t.Fatal("service must start disabled when tls verification is off")
	}
}

func TestDisabledServiceAnswersZero(t *testing.T) {
	s, calls := newTestService("IS_EXPLORATORY|x", nil)
	s.disabled.Store(true)

	if got, err := s.InferDescription(context.Background(), "r", "", nil, ""); got != "" || err != nil {
		t.Fatalf("description = %q, %v", got, err)
	}
	if code, text, err := s.InferExemption(context.Background(), "r", "", ""); code != "" || text != "" || err != nil {
		t.Fatalf("exemption = %q, %q, %v", code, text, err)
	}
	if expl, _, err := s.IsExploratory(context.Background(), "r", "", ""); expl || err != nil {
		t.Fatalf("exploratory = %v, %v", expl, err)
	}
	if *calls != 0 {
		t.Fatalf("model consulted %d times while disabled", *calls)
	}
}

func TestOrganizationGate(t *testing.T) {
	s, calls := newTestService("National Center for Immunization", nil)
	s.opts.OrganizationEnabled = false

	got, err := s.InferOrganization(context.Background(), "r", "", "", []string{"NCIRD"})
	if got != "" || err != nil {
		t.Fatalf("org = %q, %v", got, err)
	}
	if *calls != 0 {
		t.Fatal("organization inference must not run when gated off")
	}
}

func TestInferExemption(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		code   string
		text   string
	}{
		{"valid", "exemptByLaw|Contains PHI under HIPAA", catalog.UsageExemptByLaw, "Contains PHI under HIPAA"},
		{"valid with spaces", " exemptByCIO | hackathon prototype ", catalog.UsageExemptByCIO, "hackathon prototype"},
		{"none", "None", "", ""},
		{"empty", "", "", ""},
		{"missing pipe", "exemptByLaw because reasons", "", ""},
		{"unknown code", "exemptFromGravity|x", "", ""},
		{"non-assignable code", "exemptNonCode|docs only", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestService(tc.answer, nil)
			code, text, err := s.InferExemption(context.Background(), "repo", "", "")
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if code != tc.code || text != tc.text {
				t.Fatalf("got %q, %q; want %q, %q", code, text, tc.code, tc.text)
			}
		})
	}
}

func TestInferExemptionPropagatesErrors(t *testing.T) {
	s, _ := newTestService("", errors.New("deadline exceeded"))
	if _, _, err := s.InferExemption(context.Background(), "repo", "", ""); err == nil {
		t.Fatal("model errors must surface to the cascade")
	}
}

func TestIsExploratory(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		expl   bool
		reason string
	}{
		{"positive", "IS_EXPLORATORY|weekend hackathon output", true, "weekend hackathon output"},
		{"negative", "NOT_EXPLORATORY|production surveillance pipeline", false, "production surveillance pipeline"},
		{"case folded", "is_exploratory|demo", true, "demo"},
		{"garbage", "perhaps", false, ""},
		{"empty", "", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestService(tc.answer, nil)
			expl, reason, err := s.IsExploratory(context.Background(), "repo", "", "")
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if expl != tc.expl || reason != tc.reason {
				t.Fatalf("got %v, %q; want %v, %q", expl, reason, tc.expl, tc.reason)
			}
		})
	}
}

func TestInferOrganization(t *testing.T) {
	s, _ := newTestService("National Center for Health Statistics", nil)
	got, err := s.InferOrganization(context.Background(), "repo", "", "", []string{"NCHS"})
	if err != nil || got != "National Center for Health Statistics" {
		t.Fatalf("org = %q, %v", got, err)
	}

	s2, _ := newTestService("None", nil)
	if got, _ := s2.InferOrganization(context.Background(), "repo", "", "", nil); got != "" {
		t.Fatalf("None must map to empty, got %q", got)
	}
}

func TestInputAssembly(t *testing.T) {
	s, _ := newTestService("", nil)
	in := s.input("fluview", "weekly flu reporting", []string{"R", "Python"}, "# FluView\n")
	for _, want := range []string{"Repository name: fluview", "Description: weekly flu reporting", "Languages: R, Python", "README:"} {
		if !strings.Contains(in, want) {
			t.Fatalf("input missing %q:\n%s", want, in)
		}
	}

	s.opts.MaxInputTokens = 4
	long := s.input("fluview", strings.Repeat("x", 100), nil, "")
	if len(long) != 4*bytesPerToken {
		t.Fatalf("len = %d, want %d", len(long), 4*bytesPerToken)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	s := strings.Repeat("é", 10) // 2 bytes each
	got := truncate(s, 5)
	if !strings.HasPrefix(s, got) {
		t.Fatalf("truncate must return a prefix, got %q", got)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4 (no split rune)", len(got))
	}
	if truncate("short", 100) != "short" {
		t.Fatal("under-limit strings pass through")
	}
}

func TestPromptsPinTheGrammar(t *testing.T) {
	if p := exemptionPrompt("X"); !strings.Contains(p, "code|short justification") || !strings.Contains(p, "None") {
		t.Fatalf("exemption prompt = %q", p)
	}
	if p := exploratoryPrompt("X"); !strings.Contains(p, "IS_EXPLORATORY|") || !strings.Contains(p, "NOT_EXPLORATORY|") {
		t.Fatalf("exploratory prompt = %q", p)
	}
	if p := descriptionPrompt("X"); !strings.Contains(p, "N/A") {
		t.Fatalf("description prompt = %q", p)
	}
	p := organizationPrompt("X", []string{"NCHS - National Center for Health Statistics", "NCIRD - National Center for Immunization"})
	if !strings.Contains(p, "NCHS - National Center for Health Statistics") {
		t.Fatalf("organization prompt must carry the known list: %q", p)
	}
}

func TestDisablingFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"forbidden", &googleapi.Error{Code: 403}, true},
		{"unauthorized", &googleapi.Error{Code: 401}, true},
		{"server error", &googleapi.Error{Code: 500}, false},
		{"x509", errors.New("x509: certificate signed by unknown authority"), true},
		{"bad key text", errors.New("API key not valid. Please pass a valid API key"), true},
		{"quota", errors.New("rpc error: code = ResourceExhausted desc = quota exceeded"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := disablingFailure(tc.err); got != tc.want {
				t.Fatalf("disablingFailure = %v, want %v", got, tc.want)
			}
		})
	}
}
