package mcp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorIsTheOnlyConstructor(t *testing.T) {
	err := newError(KindTimeout, "deadline exceeded", nil)
	assert.Equal(t, KindTimeout, err.Kind)
	assert.Contains(t, err.Error(), "Timeout")
	assert.Contains(t, err.Error(), "deadline exceeded")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newError(KindRetryable, "wrapped", cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsKind(t *testing.T) {
	err := newError(KindCapabilityMissing, "no tools capability", nil)
	assert.True(t, IsKind(err, KindCapabilityMissing))
	assert.False(t, IsKind(err, KindTimeout))
	assert.False(t, IsKind(errors.New("plain"), KindTimeout))
}

func TestClassifyJSONRPCErrorAuthLikeIsAlwaysRetryable(t *testing.T) {
	werr := &WireError{Code: -32000, Message: "401 Unauthorized: token expired"}
	assert.Equal(t, KindRetryable, classifyJSONRPCError(werr))
}

func TestClassifyJSONRPCErrorStructuralIsNonRetryable(t *testing.T) {
	werr := &WireError{Code: -32601, Message: "method not found"}
	assert.Equal(t, KindNonRetryable, classifyJSONRPCError(werr))
}

func TestClassifyJSONRPCErrorServerErrorBandIsRetryable(t *testing.T) {
	werr := &WireError{Code: -32050, Message: "server temporarily overloaded"}
	assert.Equal(t, KindRetryable, classifyJSONRPCError(werr))
}

func TestWithMethodAttachesDiagnosticContext(t *testing.T) {
	err := newError(KindNonRetryable, "failed", nil).withMethod("tools/call")
	assert.Equal(t, "tools/call", err.Method)
	assert.Contains(t, err.Error(), "tools/call")
}

func TestWithVersionsCarriesBothVersions(t *testing.T) {
	err := newError(KindVersionMismatch, "mismatch", nil).withVersions("2025-06-18", SupportedProtocolVersions, "1999-01-01")
	assert.Equal(t, "2025-06-18", err.Requested)
	assert.Equal(t, "1999-01-01", err.Chosen)
	assert.Contains(t, err.Accepted, "2024-11-05")
}
