package orchestrator

import "fmt"

// BackendError reports a model backend that could not be reached or answered
// with an error. The conversation up to the failing round is returned with it.
type BackendError struct {
	Adapter string
	Round   int
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed in round %d: %v", e.Adapter, e.Round, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
