// Connection header and length-prefixed framing of TCPROS.
package ros

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// maxFrameSize bounds header and message frames read from the wire.
const maxFrameSize = 64 << 20

type header struct {
	key   string
	value string
}

func headerMap(headers []header) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[h.key] = h.value
	}
	return m
}

func readFrame(r io.Reader) ([]byte, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > maxFrameSize {
		return nil, errors.Errorf("frame of %d bytes exceeds limit", size)
	}
	buf := make([]byte, int(size))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)
	_, err := w.Write(buf)
	return err
}

func readConnectionHeader(r io.Reader) ([]header, error) {
	buf, err := readFrame(r)
	if err != nil {
		return nil, err
	}

	var headers []header
	for len(buf) > 0 {
		if len(buf) < 4 {
			return nil, errors.New("truncated header field length")
		}
		size := binary.LittleEndian.Uint32(buf)
		buf = buf[4:]
		if uint32(len(buf)) < size {
			return nil, errors.New("header length overrun")
		}
		line := buf[:size]
		buf = buf[size:]
		sep := bytes.IndexByte(line, '=')
		if sep < 0 {
			return nil, errors.Errorf("header field %q has no '='", line)
		}
		headers = append(headers, header{string(line[:sep]), string(line[sep+1:])})
	}
	return headers, nil
}

func writeConnectionHeader(headers []header, w io.Writer) error {
	var buf bytes.Buffer
	for _, h := range headers {
		field := h.key + "=" + h.value
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(field)))
		buf.WriteString(field)
	}
	return writeFrame(w, buf.Bytes())
}
