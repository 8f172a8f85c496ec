// Package poslv holds the ROS message and service types of the POS LV
// driver.
package poslv

import (
	"github.com/edwinhayes/poslv/ros"
)

// Service type metadata
type _SrvSetDGPS struct {
	name    string
	md5sum  string
	text    string
	reqType ros.MessageType
	resType ros.MessageType
}

func (t *_SrvSetDGPS) Name() string                  { return t.name }
func (t *_SrvSetDGPS) MD5Sum() string                { return t.md5sum }
func (t *_SrvSetDGPS) Text() string                  { return t.text }
func (t *_SrvSetDGPS) RequestType() ros.MessageType  { return t.reqType }
func (t *_SrvSetDGPS) ResponseType() ros.MessageType { return t.resType }
func (t *_SrvSetDGPS) NewService() ros.Service {
	return new(SetDGPS)
}

var (
	SrvSetDGPS = &_SrvSetDGPS{
		"poslv/SetDGPS",
		"d0526c0721dac532c1920bf4beeb50ae",
		`string mode
---
bool response
string message
`,
		MsgSetDGPSRequest,
		MsgSetDGPSResponse,
	}
)

type SetDGPS struct {
	Request  SetDGPSRequest
	Response SetDGPSResponse
}

func (s *SetDGPS) ReqMessage() ros.Message { return &s.Request }
func (s *SetDGPS) ResMessage() ros.Message { return &s.Response }
