package errors

// Platform-API retry semantics: which errors are worth another attempt

import (
	"context"
	stderrs "errors"
	"net"
	"strings"
)

// IsRateLimited reports whether the error is a platform rate limit signal
func IsRateLimited(err error) bool { return IsCode(err, ErrorCodeTooManyRequests) }

// IsNotFound reports whether the error is a missing-resource signal
func IsNotFound(err error) bool { return IsCode(err, ErrorCodeNotFound) }

// IsForbidden reports whether the error is an access control signal
func IsForbidden(err error) bool { return IsCode(err, ErrorCodeForbidden) }

// IsEmptyRepo reports whether the error is a platform "empty repository" signal
func IsEmptyRepo(err error) bool { return IsCode(err, ErrorCodeEmptyRepo) }

// Retryable reports whether the error represents a transient condition worth
// retrying: rate limits, 5xx responses, and network-level failures.
// Local cancellations/timeouts are never retryable; the caller owns those
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch CodeOf(err) {
	case ErrorCodeTooManyRequests, ErrorCodeUnavailable:
		return true
	case ErrorCodeUnknown:
		// fall through to cause inspection below
	default:
		return false
	}

	root := Root(err)

	var netErr net.Error
	if stderrs.As(root, &netErr) && netErr.Timeout() {
		return true
	}

	// Fallback: text patterns from transports that surface plain errors
	s := strings.ToLower(root.Error())
	switch {
	case strings.Contains(s, "connection reset by peer"),
		strings.Contains(s, "connection refused"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "tls handshake timeout"),
		strings.Contains(s, "no such host"),
		strings.Contains(s, "i/o timeout"):
		return true
	default:
		return false
	}
}
