// Package dgps switches the DGPS correction mode of a POS LV through its
// mode service and reports the outcome.
package dgps

import (
	"context"
	"fmt"
)

const (
	// ServiceName is the well-known name of the mode service.
	ServiceName = "/poslv/set_dgps"
	// ModeCMR selects CMR corrections.
	ModeCMR = "cmr"
)

// Request asks the device to switch to Mode.
type Request struct {
	Mode string
}

// Response is the device's answer. Message is only meaningful when
// Success is false.
type Response struct {
	Success bool
	Message string
}

// Bus finds the mode service.
type Bus interface {
	// AwaitServiceReady blocks until the named service can be called.
	AwaitServiceReady(ctx context.Context, name string) (ModeService, error)
}

// ModeService is a reachable mode service.
type ModeService interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// Outcome discriminates the results of SetMode.
type Outcome int

const (
	Success Outcome = iota
	ServiceUnavailable
	LogicalFailure
	TransportFailure
	InvalidMode
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case ServiceUnavailable:
		return "service unavailable"
	case LogicalFailure:
		return "logical failure"
	case TransportFailure:
		return "transport failure"
	case InvalidMode:
		return "invalid mode"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the typed outcome of one SetMode call.
type Result struct {
	Mode    string
	Service string
	Outcome Outcome
	// Reason is the device's message for a LogicalFailure.
	Reason string
	// Err carries the detail of every other failure.
	Err error
}

// OK reports whether the mode was set.
func (r Result) OK() bool {
	return r.Outcome == Success
}
