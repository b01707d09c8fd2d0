package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindOther is any failure that is neither a network problem nor a bad status.
	KindOther Kind = iota

	// KindConnection covers DNS failures, refused and reset connections.
	KindConnection

	// KindTimeout covers client and dial timeouts.
	KindTimeout

	// KindStatus is a response whose status code is not 2xx.
	KindStatus
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection-error"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "non-success-status"
	default:
		return "other"
	}
}

// Error is the typed failure returned by Fetcher.Fetch.
type Error struct {
	// Kind is the failure classification.
	Kind Kind

	// URL is the URL that was being fetched.
	URL string

	// StatusCode is set for KindStatus.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed.
// Only connection errors and timeouts are transient.
func (e *Error) Retryable() bool {
	return e.Kind == KindConnection || e.Kind == KindTimeout
}

// IsRetryable reports whether err is a *Error that is worth retrying.
func IsRetryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}

// KindOf returns the Kind of err, or KindOther if err is not a *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindOther
}

// classify maps a transport or body-read error onto a Kind.
//
// A cancelled caller context is KindOther, not a timeout: the crawl is
// shutting down and retrying would be pointless.
func classify(ctx context.Context, err error) Kind {
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return KindOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return KindConnection
	}

	return KindOther
}
