package poslv

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/edwinhayes/poslv/ros"
)

type _MsgSetDGPSRequest struct {
	text   string
	name   string
	md5sum string
}

func (t *_MsgSetDGPSRequest) Text() string {
	return t.text
}

func (t *_MsgSetDGPSRequest) Name() string {
	return t.name
}

func (t *_MsgSetDGPSRequest) MD5Sum() string {
	return t.md5sum
}

func (t *_MsgSetDGPSRequest) NewMessage() ros.Message {
	m := new(SetDGPSRequest)
	m.Mode = ""
	return m
}

var (
	MsgSetDGPSRequest = &_MsgSetDGPSRequest{
		`string mode
`,
		"poslv/SetDGPSRequest",
		"e84dc3ad5dc323bb64f0aca01c2d1eef",
	}
)

type SetDGPSRequest struct {
	Mode string `rosmsg:"mode:string"`
}

func (m *SetDGPSRequest) Type() ros.MessageType {
	return MsgSetDGPSRequest
}

func (m *SetDGPSRequest) Serialize(buf *bytes.Buffer) error {
	var err error = nil
	binary.Write(buf, binary.LittleEndian, uint32(len([]byte(m.Mode))))
	buf.Write([]byte(m.Mode))
	return err
}

func (m *SetDGPSRequest) Deserialize(buf *bytes.Reader) error {
	var err error = nil
	{
		var size uint32
		if err = binary.Read(buf, binary.LittleEndian, &size); err != nil {
			return err
		}
		if int64(size) > int64(buf.Len()) {
			return io.ErrUnexpectedEOF
		}
		data := make([]byte, int(size))
		if err = binary.Read(buf, binary.LittleEndian, data); err != nil {
			return err
		}
		m.Mode = string(data)
	}
	return err
}
