package registry

import (
	"errors"
	"fmt"
)

var (
	ErrFunctionNotFound = errors.New("function not found")
	ErrDuplicateName    = errors.New("duplicate function name")
	ErrUnknownRequired  = errors.New("required parameter is not declared")
)

// RemoteCallError reports a callback whose third-party call failed.
type RemoteCallError struct {
	Function string
	Err      error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call for %s failed: %v", e.Function, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }
