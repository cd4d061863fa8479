package ai

import (
	"errors"
	"fmt"
)

// ErrMissingCredential means the configured provider has no API key.
// Checked before any network I/O.
var ErrMissingCredential = errors.New("api key not configured")

// TransportError wraps a network-level failure (timeout, connection error,
// open circuit). The upstream never produced a response.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderError carries an application-level error reported by the provider
// (malformed request, upstream quota, auth rejection). StatusCode is zero
// when the SDK does not surface one.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}
