package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PreferredProtocolVersion is the version this client offers first during
// the initialize handshake.
const PreferredProtocolVersion = "2025-06-18"

// SupportedProtocolVersions is the set of versions this client will accept
// a server choosing, preferred version first.
var SupportedProtocolVersions = []string{
	"2025-06-18",
	"2025-03-26",
	"2024-11-05",
}

const defaultHandshakeTimeout = 5 * time.Second

// ClientInfo identifies this client to a server during initialize.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo identifies the server, as reported in its initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities is the structural capability set exchanged during
// initialize, in both directions. Fields are pointers/maps so that their
// mere presence (rather than any boolean value inside) is the capability
// signal, matching the wire protocol's convention.
type Capabilities struct {
	Tools       *ToolsCapability     `json:"tools,omitempty"`
	Resources   *ResourcesCapability `json:"resources,omitempty"`
	Prompts     *PromptsCapability   `json:"prompts,omitempty"`
	Sampling    map[string]any       `json:"sampling,omitempty"`
	Completions map[string]any       `json:"completions,omitempty"`
	Roots       *RootsCapability     `json:"roots,omitempty"`
	Logging     map[string]any       `json:"logging,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// DefaultClientCapabilities is what Client advertises unless overridden:
// roots with list-change notifications, nothing else declared.
func DefaultClientCapabilities() Capabilities {
	return Capabilities{
		Roots: &RootsCapability{ListChanged: true},
	}
}

// SessionContext is the immutable result of a successful handshake. It is
// never mutated after Initialize returns it.
type SessionContext struct {
	ProtocolVersion    string
	ServerInfo         ServerInfo
	ServerCapabilities Capabilities
	ClientCapabilities Capabilities
}

func (s *SessionContext) HasToolsCapability() bool { return s.ServerCapabilities.Tools != nil }
func (s *SessionContext) HasResourcesCapability() bool {
	return s.ServerCapabilities.Resources != nil
}
func (s *SessionContext) HasResourcesSubscribe() bool {
	return s.ServerCapabilities.Resources != nil && s.ServerCapabilities.Resources.Subscribe
}
func (s *SessionContext) HasPromptsCapability() bool { return s.ServerCapabilities.Prompts != nil }
func (s *SessionContext) HasSamplingCapability() bool {
	return s.ServerCapabilities.Sampling != nil
}
func (s *SessionContext) HasCompletionsCapability() bool {
	return s.ServerCapabilities.Completions != nil
}
func (s *SessionContext) HasRootsCapability() bool { return s.ServerCapabilities.Roots != nil }

type initializeParams struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ClientInfo      ClientInfo   `json:"clientInfo"`
}

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

// initialize runs the single-round version-negotiation handshake: offer
// PreferredProtocolVersion, validate the server's chosen version against
// SupportedProtocolVersions, then emit notifications/initialized. submit
// is called directly (not through the retry engine) — a handshake either
// succeeds once within its own deadline or it fails outright; silently
// retrying a different server's interpretation of "initialize" behind the
// caller's back would be the wrong default.
func initialize(ctx context.Context, submit submitFunc, notify func(ctx context.Context, method string, params any) error, clientInfo ClientInfo, clientCaps Capabilities) (*SessionContext, error) {
	hctx, cancel := context.WithTimeout(ctx, defaultHandshakeTimeout)
	defer cancel()

	params := initializeParams{
		ProtocolVersion: PreferredProtocolVersion,
		Capabilities:    clientCaps,
		ClientInfo:      clientInfo,
	}

	resp, err := submit(hctx, "initialize", params)
	if err != nil {
		var mcpErr *Error
		if errors.As(err, &mcpErr) {
			if mcpErr.Kind == KindTimeout || mcpErr.Kind == KindCancelled {
				return nil, newError(mcpErr.Kind, "initialize handshake did not complete in time", mcpErr).withMethod("initialize")
			}
			return nil, mcpErr
		}
		return nil, newError(KindUnknown, "initialize failed", err).withMethod("initialize")
	}

	if resp.Result == nil {
		return nil, newError(KindNonRetryable, "initialize response missing result", nil).withMethod("initialize")
	}

	var result initializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, newError(KindParseError, "malformed initialize result", err).withMethod("initialize")
	}

	if !versionAccepted(result.ProtocolVersion) {
		msg := fmt.Sprintf("server chose unsupported protocol version %q", result.ProtocolVersion)
		return nil, newError(KindVersionMismatch, msg, nil).
			withMethod("initialize").
			withVersions(PreferredProtocolVersion, SupportedProtocolVersions, result.ProtocolVersion)
	}

	session := &SessionContext{
		ProtocolVersion:    result.ProtocolVersion,
		ServerInfo:         result.ServerInfo,
		ServerCapabilities: result.Capabilities,
		ClientCapabilities: clientCaps,
	}

	if err := notify(hctx, "notifications/initialized", nil); err != nil {
		return nil, newError(KindNonRetryable, "notifications/initialized failed", err).withMethod("notifications/initialized")
	}

	return session, nil
}

func versionAccepted(v string) bool {
	for _, sv := range SupportedProtocolVersions {
		if sv == v {
			return true
		}
	}
	return false
}
