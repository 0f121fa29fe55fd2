package domain

import "time"

const (
	// FailureNone indicates a successful invocation.
	FailureNone FailureKind = ""

	// FailureTimeout indicates the connect or execute phase exceeded its budget.
	FailureTimeout FailureKind = "timeout"

	// FailureProvider indicates a provider or the agent returned an error during either phase.
	FailureProvider FailureKind = "provider-error"

	// FailureUnknown indicates an uncategorized failure, captured with its message for diagnostics.
	FailureUnknown FailureKind = "unknown"
)

// FailureKind is the closed classification for invocation failures,
// allowing callers to branch on failure kind rather than parsing message text.
type FailureKind string

// InvocationOutcome is the result of one bounded invocation attempt.
// Exactly one is produced per attempt and it is immutable after creation.
type InvocationOutcome struct {
	// ID uniquely identifies the invocation attempt.
	ID string

	// Success reports whether the invocation produced output.
	Success bool

	// Output holds the agent's response text. Present only on success.
	Output string

	// Failure classifies the failure. FailureNone on success.
	Failure FailureKind

	// Message is a human-readable description of the failure. Empty on success.
	Message string

	// Elapsed is the total wall-clock time spent on the attempt.
	Elapsed time.Duration
}
