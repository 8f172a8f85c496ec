package dgps

import (
	"fmt"
	"io"
)

// Report writes the console text for r to w.
func Report(w io.Writer, r Result) error {
	var err error
	switch r.Outcome {
	case Success:
		_, err = fmt.Fprintf(w, "Mode set to: %s\n", r.Mode)
	case LogicalFailure:
		_, err = fmt.Fprintf(w, "Failed to set mode to: %s\nReason: %s\n", r.Mode, r.Reason)
	case InvalidMode:
		_, err = fmt.Fprintf(w, "Failed to set mode to: %s\nReason: %v\n", r.Mode, r.Err)
	case TransportFailure:
		_, err = fmt.Fprintf(w, "SetDGPS request failed: %v\n", r.Err)
	case ServiceUnavailable:
		_, err = fmt.Fprintf(w, "SetDGPS request failed: service %s unavailable: %v\n", r.Service, r.Err)
	default:
		_, err = fmt.Fprintf(w, "SetDGPS request failed: %s\n", r.Outcome)
	}
	return err
}
