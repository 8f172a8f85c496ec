package poslv

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// md5Text reduces a definition to the text genmsg hashes: one
// "type name" line per field, newline separated, without trailing newline.
func md5Text(definition string) string {
	return strings.TrimSpace(definition)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestMD5Sums(t *testing.T) {
	assert.Equal(t, md5Hex(md5Text(MsgSetDGPSRequest.Text())), MsgSetDGPSRequest.MD5Sum())
	assert.Equal(t, md5Hex(md5Text(MsgSetDGPSResponse.Text())), MsgSetDGPSResponse.MD5Sum())

	srvText := md5Text(MsgSetDGPSRequest.Text()) + md5Text(MsgSetDGPSResponse.Text())
	assert.Equal(t, md5Hex(srvText), SrvSetDGPS.MD5Sum())
}

func TestServiceTypeMetadata(t *testing.T) {
	assert.Equal(t, "poslv/SetDGPS", SrvSetDGPS.Name())
	assert.Equal(t, "poslv/SetDGPSRequest", SrvSetDGPS.RequestType().Name())
	assert.Equal(t, "poslv/SetDGPSResponse", SrvSetDGPS.ResponseType().Name())

	srv, ok := SrvSetDGPS.NewService().(*SetDGPS)
	require.True(t, ok)
	assert.Same(t, &srv.Request, srv.ReqMessage())
	assert.Same(t, &srv.Response, srv.ResMessage())
}

func TestRequestWireFormat(t *testing.T) {
	var buf bytes.Buffer
	req := SetDGPSRequest{Mode: "cmr"}
	require.NoError(t, req.Serialize(&buf))
	assert.Equal(t, []byte{3, 0, 0, 0, 'c', 'm', 'r'}, buf.Bytes())

	var decoded SetDGPSRequest
	require.NoError(t, decoded.Deserialize(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, "cmr", decoded.Mode)
}

func TestResponseWireFormat(t *testing.T) {
	var buf bytes.Buffer
	res := SetDGPSResponse{Response: false, Message: "busy"}
	require.NoError(t, res.Serialize(&buf))
	assert.Equal(t, []byte{0, 4, 0, 0, 0, 'b', 'u', 's', 'y'}, buf.Bytes())

	decoded := SetDGPSResponse{Response: true}
	require.NoError(t, decoded.Deserialize(bytes.NewReader(buf.Bytes())))
	assert.False(t, decoded.Response)
	assert.Equal(t, "busy", decoded.Message)
}

func TestDeserializeTruncated(t *testing.T) {
	var res SetDGPSResponse
	assert.Error(t, res.Deserialize(bytes.NewReader([]byte{1, 9, 0, 0, 0, 'x'})))

	var req SetDGPSRequest
	assert.Error(t, req.Deserialize(bytes.NewReader([]byte{1, 0})))
}
