// Package ai defines the failure taxonomy shared by the model adapters and the
// question-answering pipeline. Adapters classify provider-specific errors into
// these sentinels exactly once, at their boundary; everything upstream matches
// with errors.Is.
package ai

import "errors"

var (
	// ErrQuotaExceeded indicates the provider reported quota exhaustion.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient indicates a temporary upstream failure (5xx, timeout).
	// Retrying after backoff is reasonable.
	ErrTransient = errors.New("transient upstream error")

	// ErrEmbedding indicates the embedding backend failed or is unavailable.
	ErrEmbedding = errors.New("embedding failed")
)
