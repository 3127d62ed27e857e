// Package response separates server error payloads from success payloads
// before any record decoding is attempted.
package response

import (
	"fmt"

	"github.com/ssargent/cloudrecord/pkg/wire"
)

// ServerError is an error payload returned by the server. It is handed to
// the caller as-is; nothing here retries.
type ServerError struct {
	Code        string // serverErrorCode
	Reason      string
	RecordName  string
	UUID        string
	RetryAfter  int64 // seconds, zero when absent
	RedirectURL string
	Payload     wire.Dict
}

func (e *ServerError) Error() string {
	msg := "server error " + e.Code
	if e.RecordName != "" {
		msg += fmt.Sprintf(" for record %q", e.RecordName)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is matches wire.ErrServerReported.
func (e *ServerError) Is(target error) bool {
	return wire.ErrServerReported.Is(target)
}

// IsError reports whether payload has the shape of a server error: a
// non-empty string serverErrorCode. A reason, when present, must also be
// a string.
func IsError(payload wire.Dict) bool {
	code, ok := wire.String(payload, wire.KeyServerErrorCode)
	if !ok || code == "" {
		return false
	}
	if raw, present := payload[wire.KeyReason]; present && raw != nil {
		if _, ok := raw.(string); !ok {
			return false
		}
	}
	return true
}

// Classify returns payload unchanged when it is a success payload, or a
// *ServerError when it is error-shaped.
func Classify(payload wire.Dict) (wire.Dict, error) {
	if !IsError(payload) {
		return payload, nil
	}

	e := &ServerError{Payload: payload}
	e.Code, _ = wire.String(payload, wire.KeyServerErrorCode)
	e.Reason, _ = wire.String(payload, wire.KeyReason)
	e.RecordName, _ = wire.String(payload, wire.KeyRecordName)
	e.UUID, _ = wire.String(payload, wire.KeyUUID)
	e.RedirectURL, _ = wire.String(payload, wire.KeyRedirectURL)
	if retry, ok := wire.AsInt64(payload[wire.KeyRetryAfter]); ok {
		e.RetryAfter = retry
	}
	return nil, e
}

// Parse decodes a raw response body and classifies it.
func Parse(body []byte) (wire.Dict, error) {
	payload, err := wire.Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return Classify(payload)
}
