package market

import "fmt"

// AuthError indicates no valid credential could be obtained, or a retried
// request still failed authentication. Recovery requires a fresh login flow.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "marketplace auth: " + e.Message
}

// RateLimitError covers both local admission denial (limiter timeout) and a
// remote rate-limit signal (HTTP 429). Callers may retry later; the client
// performs no automatic backoff.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return "marketplace rate limit: " + e.Message
}

// APIError is any other non-2xx response, carrying the HTTP status and the
// server-supplied message when the error envelope was parseable.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace api (%d): %s", e.StatusCode, e.Message)
}

// TransportError is a network-level failure distinguished from APIError
// because no HTTP status exists.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("marketplace transport %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
