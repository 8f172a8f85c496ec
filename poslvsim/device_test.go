package poslvsim

import (
	"testing"

	"github.com/edwinhayes/poslv/msgs/poslv"
	"github.com/stretchr/testify/assert"
)

func call(d *Device, mode string) poslv.SetDGPSResponse {
	var srv poslv.SetDGPS
	srv.Request.Mode = mode
	if err := d.HandleSetDGPS(&srv); err != nil {
		panic(err)
	}
	return srv.Response
}

func TestDeviceAcceptsDefaultModes(t *testing.T) {
	d := NewDevice(nil, nil)
	assert.Equal(t, "none", d.Mode())

	for _, mode := range DefaultModes {
		res := call(d, mode)
		assert.True(t, res.Response, mode)
		assert.Empty(t, res.Message, mode)
		assert.Equal(t, mode, d.Mode())
	}
}

func TestDeviceRejectsUnknownMode(t *testing.T) {
	d := NewDevice(nil, nil)
	res := call(d, "omnistar")

	assert.False(t, res.Response)
	assert.Equal(t, "unsupported correction mode: omnistar", res.Message)
	assert.Equal(t, "none", d.Mode())
}

func TestDeviceBusy(t *testing.T) {
	d := NewDevice([]string{"cmr"}, nil)
	d.SetBusy(true)

	res := call(d, "cmr")
	assert.False(t, res.Response)
	assert.Equal(t, BusyMessage, res.Message)
	assert.Equal(t, "none", d.Mode())

	d.SetBusy(false)
	res = call(d, "cmr")
	assert.True(t, res.Response)
	assert.Equal(t, "cmr", d.Mode())
}

func TestDeviceCustomModes(t *testing.T) {
	d := NewDevice([]string{"rtcm"}, nil)

	assert.False(t, call(d, "cmr").Response)
	assert.True(t, call(d, "rtcm").Response)
}
