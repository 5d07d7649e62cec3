package graphqllite

// RequestError is the single failure kind for calls that did not
// produce a response: transport errors, non-2xx statuses, timeouts and
// malformed bodies all surface as this type. Timeout-driven
// cancellation is the same kind, distinguishable via Timeout.
type RequestError struct {
	// StatusCode is set when the failure was a non-2xx HTTP status,
	// zero otherwise.
	StatusCode int

	err     error
	timeout bool
}

func (e *RequestError) Error() string {
	return "graphql-lite: request failed: " + e.err.Error()
}

// Unwrap exposes the original failure for errors.Is / errors.As.
func (e *RequestError) Unwrap() error {
	return e.err
}

// Timeout reports whether the failure was the configured countdown
// cancelling the in-flight call.
func (e *RequestError) Timeout() bool {
	return e.timeout
}
