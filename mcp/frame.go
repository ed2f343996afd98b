package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/google/uuid"
)

// JSONRPCVersion is the only version string this implementation writes or accepts.
const JSONRPCVersion = "2.0"

// ID is a request/response identifier. It preserves the exact wire
// representation (a quoted JSON string or a bare JSON number) instead of
// coercing through float64 or interface{}, so round-tripping never loses
// the original type.
type ID struct {
	raw json.RawMessage
}

// NewStringID wraps s as a JSON string ID.
func NewStringID(s string) ID {
	b, _ := json.Marshal(s)
	return ID{raw: b}
}

// newRequestID mints a fresh, unique ID for an outbound request.
func newRequestID() ID {
	return NewStringID(uuid.NewString())
}

// IsZero reports whether the ID was never set (e.g. a notification has none).
func (id ID) IsZero() bool {
	return len(id.raw) == 0
}

// String renders the ID for diagnostics and map keys. Quoted strings have
// their quotes stripped; bare numbers render as-is.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	var s string
	if err := json.Unmarshal(id.raw, &s); err == nil {
		return s
	}
	return string(id.raw)
}

// Equal compares two IDs by their exact wire bytes.
func (id ID) Equal(other ID) bool {
	return bytes.Equal(id.raw, other.raw)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return id.raw, nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	cp := make(json.RawMessage, len(data))
	copy(cp, data)
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		id.raw = nil
		return nil
	}
	id.raw = cp
	return nil
}

// Request is an outbound or inbound JSON-RPC request frame.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Notification is a JSON-RPC frame with no ID; no response is expected.
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// WireError is the JSON-RPC "error" object as it appears on the wire.
type WireError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Response is a JSON-RPC response frame. Exactly one of Result/Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *WireError      `json:"error,omitempty"`
}

// encodeFrame marshals a Request, Notification, or Response to its wire
// bytes, with no trailing newline — the transport owns framing.
func encodeFrame(v any) ([]byte, error) {
	switch f := v.(type) {
	case *Request:
		f.JSONRPC = JSONRPCVersion
	case *Notification:
		f.JSONRPC = JSONRPCVersion
	case *Response:
		f.JSONRPC = JSONRPCVersion
	}
	return json.Marshal(v)
}

// decodeFrame classifies and decodes a single line of wire bytes into one
// of *Request, *Notification, or *Response. It shape-sniffs with jsonparser
// before committing to a precise encoding/json decode, so params/result
// payloads keep their raw numeric representation.
func decodeFrame(data []byte) (any, error) {
	version, verr := jsonparser.GetString(data, "jsonrpc")
	if verr != nil {
		return nil, newError(KindParseError, "missing or invalid jsonrpc field", verr)
	}
	if version != JSONRPCVersion {
		return nil, newError(KindParseError, fmt.Sprintf("unsupported jsonrpc version %q", version), nil)
	}

	_, idErr := jsonparser.GetString(data, "id")
	idIsString := idErr == nil
	_, idNumErr := jsonparser.GetFloat(data, "id")
	idPresent := idIsString || idNumErr == nil

	_, methodErr := jsonparser.GetString(data, "method")
	methodPresent := methodErr == nil

	_, _, _, resultErr := jsonparser.Get(data, "result")
	resultPresent := resultErr == nil
	_, _, _, errorErr := jsonparser.Get(data, "error")
	errorPresent := errorErr == nil

	switch {
	case methodPresent && !idPresent:
		var n Notification
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, newError(KindParseError, "malformed notification frame", err)
		}
		return &n, nil
	case methodPresent && idPresent:
		var r Request
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, newError(KindParseError, "malformed request frame", err)
		}
		return &r, nil
	case idPresent && (resultPresent || errorPresent):
		var r Response
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, newError(KindParseError, "malformed response frame", err)
		}
		if resultPresent && errorPresent {
			return nil, newError(KindParseError, "response carries both result and error", nil)
		}
		return &r, nil
	default:
		return nil, newError(KindParseError, "frame matches neither request, notification, nor response shape", nil)
	}
}

func mustParams(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	return b
}
