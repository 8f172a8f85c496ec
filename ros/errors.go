package ros

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrServiceNotFound is returned when the master has no provider for
	// a service.
	ErrServiceNotFound = errors.New("service not found")
	// ErrIncompatibleService is returned when both ends disagree on the
	// service MD5 sum.
	ErrIncompatibleService = errors.New("incompatible service type")
	// ErrNodeShutdown is returned by blocking calls interrupted by node
	// shutdown.
	ErrNodeShutdown = errors.New("node is shut down")
)

// ServiceError is a failure reported by the service provider: its handler
// returned an error and the call came back with the OK byte cleared.
type ServiceError struct {
	Service string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service [%s] responded with an error: %s", e.Service, e.Message)
}

// APIError is a non-success status returned by a master or slave API call.
type APIError struct {
	Method  string
	Code    int32
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ROS API %s failed with code %d: %s", e.Method, e.Code, e.Message)
}
