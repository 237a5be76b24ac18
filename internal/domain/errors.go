package domain

import "errors"

// Error taxonomy for asset generation. Callers classify failures with
// errors.Is against these sentinels; messages carry the detail.
var (
	// ErrConfiguration marks an unknown module, provider or style mode.
	// Fatal, never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation marks a malformed request rejected before any
	// inference call was made.
	ErrValidation = errors.New("validation error")

	// ErrUpstreamAI marks an inference failure or a malformed structured
	// response from a provider.
	ErrUpstreamAI = errors.New("upstream ai error")

	// ErrStorage marks an upload, signed-URL or delete failure. Fatal to
	// the affected task only, never to the whole job.
	ErrStorage = errors.New("storage error")

	ErrNotFound = errors.New("not found")
)
