package intel

import (
	"errors"
	"fmt"
)

// ErrNotFound is a definitive "this domain is not registered" answer.
var ErrNotFound = errors.New("domain not found")

// ServiceError wraps a transport failure, unexpected status, or undecodable body
// from an external provider.
type ServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func serviceErr(service string, status int, err error) error {
	return &ServiceError{Service: service, StatusCode: status, Err: err}
}
