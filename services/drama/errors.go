package drama

import (
	"errors"
	"fmt"
)

// PreconditionError signals missing required input or configuration (an empty
// book id, an unset upstream token). It is never retried.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// UpstreamError is a failed upstream call. Kind is "http_status" for a non-2xx
// response and "network" for timeouts and transport-level failures.
type UpstreamError struct {
	Kind     string
	Status   int
	Endpoint string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Kind == "http_status" {
		return fmt.Sprintf("upstream %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Transient reports whether the failure looks retryable: network-level errors
// and 5xx statuses. Client errors (4xx) are not retried.
func (e *UpstreamError) Transient() bool {
	if e.Kind == "network" {
		return true
	}
	return e.Status >= 500
}

// retryable decides whether an error from the fetch path should be retried.
// Precondition failures never are; unknown error types are treated as
// non-transient to stay conservative.
func retryable(err error) bool {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Transient()
	}
	return false
}
