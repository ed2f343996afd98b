package mcp

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why an operation failed, so callers can branch on
// behavior (retry, surface to a user, abort a session) without string
// sniffing.
type Kind int

const (
	KindUnknown Kind = iota
	KindVersionMismatch
	KindTimeout
	KindRetryable
	KindNonRetryable
	KindCancelled
	KindParseError
	KindCapabilityMissing
	KindTransportClosed
)

func (k Kind) String() string {
	switch k {
	case KindVersionMismatch:
		return "VersionMismatch"
	case KindTimeout:
		return "Timeout"
	case KindRetryable:
		return "Retryable"
	case KindNonRetryable:
		return "NonRetryable"
	case KindCancelled:
		return "Cancelled"
	case KindParseError:
		return "ParseError"
	case KindCapabilityMissing:
		return "CapabilityMissing"
	case KindTransportClosed:
		return "TransportClosed"
	default:
		return "Unknown"
	}
}

// Error is the single error type raised by every entry point in this
// package. There is deliberately one constructor (newError); nothing in
// this package builds an error any other way.
type Error struct {
	Kind    Kind
	Message string
	Method  string
	Wrapped error

	// Populated only for KindVersionMismatch.
	Requested string
	Accepted  []string
	Chosen    string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Method != "" {
		fmt.Fprintf(&b, " (%s)", e.Method)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Wrapped != nil {
		fmt.Fprintf(&b, ": %v", e.Wrapped)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// newError is the single constructor for *Error, collapsing what would
// otherwise be a create_error/create_error_response split into one path.
func newError(kind Kind, msg string, wrapped error) *Error {
	return &Error{Kind: kind, Message: msg, Wrapped: wrapped}
}

func (e *Error) withMethod(method string) *Error {
	e.Method = method
	return e
}

func (e *Error) withVersions(requested string, accepted []string, chosen string) *Error {
	e.Requested = requested
	e.Accepted = accepted
	e.Chosen = chosen
	return e
}

// IsKind reports whether err is an *Error of the given Kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// classifyJSONRPCError maps a wire-level JSON-RPC error object to a Kind.
// Authentication-like failures are always Retryable, since a renewed
// credential may succeed where a permanent structural error never will.
func classifyJSONRPCError(werr *WireError) Kind {
	if werr == nil {
		return KindUnknown
	}
	if isAuthLike(werr) {
		return KindRetryable
	}
	switch {
	case werr.Code == -32600, werr.Code == -32601, werr.Code == -32602, werr.Code == -32603, werr.Code == -32700:
		return KindNonRetryable
	case werr.Code <= -32000 && werr.Code >= -32099:
		// Implementation-defined server error band: treated as transient.
		return KindRetryable
	default:
		return KindNonRetryable
	}
}

func isAuthLike(werr *WireError) bool {
	s := strings.ToLower(werr.Message)
	if strings.Contains(s, "unauthorized") || strings.Contains(s, "unauthenticated") ||
		strings.Contains(s, "401") || strings.Contains(s, "403") || strings.Contains(s, "forbidden") ||
		strings.Contains(s, "token expired") || strings.Contains(s, "invalid credentials") {
		return true
	}
	if len(werr.Data) > 0 {
		ds := strings.ToLower(string(werr.Data))
		if strings.Contains(ds, "unauthorized") || strings.Contains(ds, "unauthenticated") {
			return true
		}
	}
	return false
}

// classifyTransportError maps a raw transport-layer error (write/read
// failure, closed pipe) to a Kind.
func classifyTransportError(err error) *Error {
	if err == nil {
		return nil
	}
	var mcpErr *Error
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	return newError(KindRetryable, "transport error", err)
}
