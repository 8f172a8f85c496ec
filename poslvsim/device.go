// Package poslvsim simulates the mode service of a POS LV node so the
// DGPS tools can be exercised without hardware.
package poslvsim

import (
	"fmt"
	"sync"

	"github.com/edwinhayes/poslv/dgps"
	"github.com/edwinhayes/poslv/msgs/poslv"
	"github.com/edwinhayes/poslv/ros"
	"github.com/sirupsen/logrus"
)

// DefaultModes are the correction protocols accepted unless configured.
var DefaultModes = []string{"none", "cmr", "rtcm"}

// BusyMessage is the refusal reason while the device is busy.
const BusyMessage = "device busy"

// Device holds the simulated receiver state.
type Device struct {
	mu     sync.Mutex
	modes  map[string]struct{}
	mode   string
	busy   bool
	logger *logrus.Entry
}

// NewDevice returns an idle device accepting modes, or DefaultModes when
// modes is empty. The initial mode is "none".
func NewDevice(modes []string, logger *logrus.Entry) *Device {
	if len(modes) == 0 {
		modes = DefaultModes
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	d := &Device{
		modes:  make(map[string]struct{}, len(modes)),
		mode:   "none",
		logger: logger,
	}
	for _, m := range modes {
		d.modes[m] = struct{}{}
	}
	return d
}

// SetBusy makes the device refuse mode changes until cleared.
func (d *Device) SetBusy(busy bool) {
	d.mu.Lock()
	d.busy = busy
	d.mu.Unlock()
}

// Mode returns the active correction mode.
func (d *Device) Mode() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// HandleSetDGPS answers one SetDGPS call. Refusals are reported in the
// response, never as a call error.
func (d *Device) HandleSetDGPS(srv *poslv.SetDGPS) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	mode := srv.Request.Mode
	logger := d.logger.WithField("mode", mode)
	if _, ok := d.modes[mode]; !ok {
		srv.Response.Response = false
		srv.Response.Message = fmt.Sprintf("unsupported correction mode: %s", mode)
		logger.Warn("rejected unsupported mode")
		return nil
	}
	if d.busy {
		srv.Response.Response = false
		srv.Response.Message = BusyMessage
		logger.Warn("rejected mode change while busy")
		return nil
	}
	d.mode = mode
	srv.Response.Response = true
	srv.Response.Message = ""
	logger.Info("correction mode changed")
	return nil
}

// Serve registers the device as provider of the mode service on node.
// Calls are answered while the node spins.
func Serve(node ros.Node, d *Device) (ros.ServiceServer, error) {
	return node.NewServiceServer(dgps.ServiceName, poslv.SrvSetDGPS, d.HandleSetDGPS)
}
