// Package errors collects the sentinel errors raised across the gateway.
// Expected failures (unknown tool_id, missing candidate, bad group) are
// encoded as response envelopes by the caller and never reach here;
// these sentinels are for genuinely exceptional conditions that
// propagate up to a transport boundary.
package errors

import "errors"

var (
	// ErrBackendUnavailable is returned when the backend's ListTools call
	// fails; a partial registry is never produced.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrMalformedToolMeta is returned when a raw tool descriptor has an
	// empty name after trimming.
	ErrMalformedToolMeta = errors.New("malformed tool metadata")

	// ErrUnknownProvider names a model config whose provider has no
	// client. No code path in this module returns it.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrMissingAPIKey is returned when the external-model agent is
	// invoked without an API key available.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrUnsupportedTransport names an MCP_TRANSPORT value other than the
	// one transport phase 1 supports. cmd/gateway-server does not return
	// it: on such a value it logs the transport and exits with status 1.
	ErrUnsupportedTransport = errors.New("unsupported transport")

	// ErrMaxRoundsExceeded is returned when the external-model agent's
	// tool-call loop exceeds its round budget without a terminal reply.
	ErrMaxRoundsExceeded = errors.New("max tool-call rounds exceeded")

	// ErrInvalidModelResponse is returned when the external model's
	// response cannot be parsed into an assistant message.
	ErrInvalidModelResponse = errors.New("invalid model response")
)
