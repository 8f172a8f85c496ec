package poslv

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/edwinhayes/poslv/ros"
)

type _MsgSetDGPSResponse struct {
	text   string
	name   string
	md5sum string
}

func (t *_MsgSetDGPSResponse) Text() string {
	return t.text
}

func (t *_MsgSetDGPSResponse) Name() string {
	return t.name
}

func (t *_MsgSetDGPSResponse) MD5Sum() string {
	return t.md5sum
}

func (t *_MsgSetDGPSResponse) NewMessage() ros.Message {
	m := new(SetDGPSResponse)
	m.Response = false
	m.Message = ""
	return m
}

var (
	MsgSetDGPSResponse = &_MsgSetDGPSResponse{
		`bool response
string message
`,
		"poslv/SetDGPSResponse",
		"87b1fd982a168c0d99086b81fb86beab",
	}
)

type SetDGPSResponse struct {
	Response bool   `rosmsg:"response:bool"`
	Message  string `rosmsg:"message:string"`
}

func (m *SetDGPSResponse) Type() ros.MessageType {
	return MsgSetDGPSResponse
}

func (m *SetDGPSResponse) Serialize(buf *bytes.Buffer) error {
	var err error = nil
	binary.Write(buf, binary.LittleEndian, m.Response)
	binary.Write(buf, binary.LittleEndian, uint32(len([]byte(m.Message))))
	buf.Write([]byte(m.Message))
	return err
}

func (m *SetDGPSResponse) Deserialize(buf *bytes.Reader) error {
	var err error = nil
	if err = binary.Read(buf, binary.LittleEndian, &m.Response); err != nil {
		return err
	}
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
		m.Message = string(data)
	}
	return err
}
