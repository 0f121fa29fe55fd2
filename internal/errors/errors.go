// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// Unmapped errors will default to HTTP 500 Internal Server Error, so when adding
// a new error here, add a case to mapError (internal/daemon/api_server.go) and a
// test case to TestMapError.
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrProviderNotFound indicates that the requested tool provider does not exist or is not registered.
	// Recommended to map to HTTP 404 Not Found.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrHealthNotTracked indicates that health monitoring has not recorded the specified provider.
	// Recommended to map to HTTP 404 Not Found.
	ErrHealthNotTracked = errors.New("provider health is not being tracked")

	// ErrProviderStart indicates that launching a tool provider process failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrProviderStart = errors.New("provider start failed")

	// ErrToolForbidden indicates that the requested tool either does not exist on the provider,
	// or exists but is not in the provider's allowed tools list.
	// Recommended to map to HTTP 403 Forbidden.
	ErrToolForbidden = errors.New("tool not allowed")

	// ErrToolListFailed indicates that listing tools from a provider failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolListFailed = errors.New("tool list failed")

	// ErrToolCallFailed indicates that calling a tool on a provider failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolCallFailed = errors.New("tool call failed")

	// ErrAgentCompletion indicates that the agent failed to produce output for a prompt.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrAgentCompletion = errors.New("agent completion failed")
)
