package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestFromHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusUnauthorized, ErrorCodeUnauthorized},
		{http.StatusForbidden, ErrorCodeForbidden},
		{http.StatusNotFound, ErrorCodeNotFound},
		{http.StatusConflict, ErrorCodeConflict},
		{http.StatusTooManyRequests, ErrorCodeTooManyRequests},
		{http.StatusUnprocessableEntity, ErrorCodeInvalidArgument},
		{http.StatusInternalServerError, ErrorCodeUnavailable},
		{http.StatusBadGateway, ErrorCodeUnavailable},
		{http.StatusServiceUnavailable, ErrorCodeUnavailable},
		{http.StatusBadRequest, ErrorCodeAPI},
		{http.StatusGone, ErrorCodeAPI},
		{http.StatusOK, ErrorCodeUnknown},
	}
	for _, c := range cases {
		if got := FromHTTPStatus(c.status); got != c.want {
			t.Fatalf("FromHTTPStatus(%d) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	// New / Newf
	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeJSON, "bad json %d", 12)
	if got := e2.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	// Wrap / Wrapf / Unwrap
	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeAPI, "fetch failed")
	if Unwrap := stderrs.Unwrap(e3); Unwrap == nil || Unwrap.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if CodeOf(e3) != ErrorCodeAPI {
		t.Fatalf("CodeOf(Wrap) = %v", CodeOf(e3))
	}
	e4 := Wrapf(src, ErrorCodeForbidden, "nope %s", "here")
	// Error() includes message + ": " + orig
	if want := "nope here: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}

	// As
	if got, ok := As(e4); !ok || got.Code() != ErrorCodeForbidden {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	// WithField (copy-on-write) and WithOp
	e5 := Wrap(src, ErrorCodeInvalidArgument, "oops")
	e6 := WithField(e5, "email")
	e7 := WithOp(e6, "validate")
	if fe, ok := As(e6); !ok || fe.Field() != "email" {
		t.Fatalf("WithField failed")
	}
	if oe, ok := As(e7); !ok || oe.Op() != "validate" {
		t.Fatalf("WithOp failed")
	}
	// original unchanged
	if fe0, _ := As(e5); fe0.Field() != "" || fe0.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}

	// WithFieldChain wraps foreign error
	wrapped := WithFieldChain(src, "name")
	we, ok := As(wrapped)
	if !ok || we.Field() != "name" || we.Code() != ErrorCodeUnknown {
		t.Fatalf("WithFieldChain failed: %+v", we)
	}

	// Helpers (sugar) and IsCode
	if !IsCode(NotFoundf("x"), ErrorCodeNotFound) ||
		!IsCode(InvalidArgf("x"), ErrorCodeInvalidArgument) ||
		!IsCode(EmptyRepof("x"), ErrorCodeEmptyRepo) ||
		!IsCode(APIErrf("x"), ErrorCodeAPI) ||
		!IsCode(JSONErrf("x"), ErrorCodeJSON) ||
		!IsCode(PanicErrf("x"), ErrorCodePanic) ||
		!IsCode(Unauthorizedf("x"), ErrorCodeUnauthorized) ||
		!IsCode(Forbiddenf("x"), ErrorCodeForbidden) ||
		!IsCode(Conflictf("x"), ErrorCodeConflict) ||
		!IsCode(Unavailablef("x"), ErrorCodeUnavailable) ||
		!IsCode(RateLimitedf("x"), ErrorCodeTooManyRequests) {
		t.Fatalf("sugar helpers code mismatch")
	}

	// WrapIf
	if WrapIf(nil, ErrorCodeAPI, "ignored") != nil {
		t.Fatalf("WrapIf(nil) should return nil")
	}
	if WrapIf(src, ErrorCodeAPI, "api") == nil {
		t.Fatalf("WrapIf(non-nil) should wrap")
	}

	// Root traversal
	deep := fmt.Errorf("level2: %w", fmt.Errorf("level1: %w", src))
	if got := Root(deep); got == nil || got.Error() != "root" {
		t.Fatalf("Root() failed, got %v", got)
	}

	// ErrNotFound sentinel behavior
	if !IsCode(ErrNotFound, ErrorCodeNotFound) {
		t.Fatalf("ErrNotFound code mismatch")
	}
}

func TestRetryAfterCarrier(t *testing.T) {
	base := RateLimitedf("slow down")
	if _, ok := RetryAfterOf(base); ok {
		t.Fatalf("RetryAfterOf without hint should report false")
	}

	hinted := WithRetryAfter(base, 42*time.Second)
	d, ok := RetryAfterOf(hinted)
	if !ok || d != 42*time.Second {
		t.Fatalf("RetryAfterOf = (%v, %v), want (42s, true)", d, ok)
	}
	// original unchanged
	if _, ok := RetryAfterOf(base); ok {
		t.Fatalf("WithRetryAfter mutated original")
	}

	// foreign error gets wrapped as rate limited
	foreign := stderrs.New("429 from upstream")
	fw := WithRetryAfter(foreign, time.Second)
	if CodeOf(fw) != ErrorCodeTooManyRequests {
		t.Fatalf("WithRetryAfter(foreign) code = %v, want TooManyRequests", CodeOf(fw))
	}
	if d, ok := RetryAfterOf(fw); !ok || d != time.Second {
		t.Fatalf("RetryAfterOf(foreign wrap) = (%v, %v)", d, ok)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", RateLimitedf("x"), true},
		{"unavailable", Unavailablef("x"), true},
		{"forbidden", Forbiddenf("x"), false},
		{"not found", NotFoundf("x"), false},
		{"validation", Newf(ErrorCodeValidation, "x"), false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"conn reset text", stderrs.New("read tcp: connection reset by peer"), true},
		{"conn refused text", stderrs.New("dial tcp: connection refused"), true},
		{"tls timeout text", stderrs.New("net/http: TLS handshake timeout"), true},
		{"plain foreign", stderrs.New("boom"), false},
		{"wrapped cancel", Wrap(context.Canceled, ErrorCodeUnavailable, "op"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Retryable(c.err); got != c.want {
				t.Fatalf("Retryable(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}
