package gateway

import (
	"errors"
	"fmt"
)

// CircuitOpenError is returned when the per-service circuit breaker is open
// and no network call was attempted.
type CircuitOpenError struct {
	Service string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for service %s", e.Service)
}

// ClientError is a 4xx response from the external service. Client errors are
// not transient and are never retried.
type ClientError struct {
	Service    string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("service %s returned %d for %s", e.Service, e.StatusCode, e.Endpoint)
}

// ServiceUnavailableError is a 5xx or transport-level failure that survived
// all retries, or an open circuit surfaced to callers as unavailability.
type ServiceUnavailableError struct {
	Service  string
	Endpoint string
	Err      error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("service %s unavailable for %s: %v", e.Service, e.Endpoint, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err means the external service could not be
// reached (circuit open or retries exhausted), as opposed to a client error.
func IsUnavailable(err error) bool {
	var circuitErr *CircuitOpenError
	var unavailableErr *ServiceUnavailableError
	return errors.As(err, &circuitErr) || errors.As(err, &unavailableErr)
}
