// Package protocol defines the JSON wire contract shared with the browser
// extension: the frame envelope and the closed catalog of action names.
//
// The key names and action strings here are load-bearing; the peer extension
// is external to this repository and reads them byte for byte.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foxmcp/foxmcp/pkg/errors"
)

// Frame types
const (
	// TypeRequest is a server-to-extension request frame. The extension uses
	// the same type for unsolicited monitor notifications.
	TypeRequest = "request"

	// TypeResponse is a successful reply to a request frame.
	TypeResponse = "response"

	// TypeError is an error reply to a request frame.
	TypeError = "error"
)

// Envelope is the shape of every frame on the WebSocket, in both directions.
type Envelope struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

// ErrorData is the payload carried by a type=error frame.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewRequest builds a request envelope with a fresh id and timestamp. The
// action must belong to the closed catalog; anything else is a programming
// error surfaced as protocol_error.
func NewRequest(action string, data map[string]any) (*Envelope, error) {
	if !Known(action) {
		return nil, errors.NewProtocolError(fmt.Sprintf("action %q is not in the catalog", action), nil)
	}
	if data == nil {
		data = map[string]any{}
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Type:      TypeRequest,
		Action:    action,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Marshal serializes the envelope to its wire form.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ErrorData decodes the error payload of a type=error frame. Missing fields
// come back empty rather than failing; the extension is not guaranteed to
// populate all three.
func (e *Envelope) ErrorData() ErrorData {
	var ed ErrorData
	if code, ok := e.Data["code"].(string); ok {
		ed.Code = code
	}
	if msg, ok := e.Data["message"].(string); ok {
		ed.Message = msg
	}
	if details, ok := e.Data["details"].(string); ok {
		ed.Details = details
	}
	return ed
}

// ParseEnvelope decodes a text frame. Frames that cannot correlate to a
// waiter (no id, unknown type) are rejected with protocol_error so the read
// loop can log and drop them.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.NewProtocolError("unparseable frame", err)
	}
	if env.ID == "" {
		return nil, errors.NewProtocolError("frame missing id", nil)
	}
	switch env.Type {
	case TypeRequest, TypeResponse, TypeError:
	default:
		return nil, errors.NewProtocolError(fmt.Sprintf("unknown frame type %q", env.Type), nil)
	}
	if env.Data == nil {
		env.Data = map[string]any{}
	}
	return &env, nil
}
