package gateway

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a missing or invalid gateway setting. It is
// raised at construction, never deferred to the first call.
type ConfigurationError struct {
	Gateway string
	Field   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("payment gateway %q is not configured properly: missing %q", e.Gateway, e.Field)
}

// TransportError reports a network-level failure (connect, timeout, TLS)
// or an HTTP status that carried no parseable gateway payload. Retrying
// the whole initiate/callback cycle is the caller's decision.
type TransportError struct {
	Gateway string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Gateway, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a response body that could not be interpreted as
// the gateway's documented schema. Not retryable without a provider-side fix.
type ProtocolError struct {
	Gateway string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s protocol error: %v", e.Gateway, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Rejection is one error entry embedded in a well-formed gateway response.
type Rejection struct {
	Code    string
	Message string
}

// GatewayRejectedError is a structured refusal by the gateway. Reasons
// keep the order they appeared in the response document.
type GatewayRejectedError struct {
	Gateway string
	Reasons []Rejection
}

func (e *GatewayRejectedError) Error() string {
	lines := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		lines = append(lines, r.Code+": "+r.Message)
	}
	return strings.Join(lines, "\n")
}

// UnknownStatusError reports a provider status code absent from the
// documented table. It halts processing instead of guessing an outcome,
// so a new provider code surfaces for manual triage.
type UnknownStatusError struct {
	Gateway string
	Code    string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown %s payment status: %s", e.Gateway, e.Code)
}
