package rostest

import (
	"context"
	"testing"

	"github.com/edwinhayes/poslv/xmlrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, m *Master, method string, args ...interface{}) []interface{} {
	t.Helper()
	res, err := xmlrpc.Call(context.Background(), m.URI(), method, args...)
	require.NoError(t, err)
	triplet, ok := res.([]interface{})
	require.True(t, ok, "%T", res)
	require.Len(t, triplet, 3)
	return triplet
}

func TestServiceRegistry(t *testing.T) {
	m, err := NewMaster()
	require.NoError(t, err)
	defer m.Close()

	res := call(t, m, "lookupService", "/set_cmr", "/poslv/set_dgps")
	assert.Equal(t, statusError, res[0])

	res = call(t, m, "registerService", "/poslv", "/poslv/set_dgps", "rosrpc://localhost:4000", "http://localhost:4001")
	assert.Equal(t, statusSuccess, res[0])

	res = call(t, m, "lookupService", "/set_cmr", "/poslv/set_dgps")
	assert.Equal(t, statusSuccess, res[0])
	assert.Equal(t, "rosrpc://localhost:4000", res[2])

	res = call(t, m, "unregisterService", "/poslv", "/poslv/set_dgps", "rosrpc://localhost:9999")
	assert.Equal(t, int32(0), res[2])
	_, ok := m.LookupService("/poslv/set_dgps")
	assert.True(t, ok)

	res = call(t, m, "unregisterService", "/poslv", "/poslv/set_dgps", "rosrpc://localhost:4000")
	assert.Equal(t, int32(1), res[2])
	_, ok = m.LookupService("/poslv/set_dgps")
	assert.False(t, ok)
}

func TestParameterServer(t *testing.T) {
	m, err := NewMaster()
	require.NoError(t, err)
	defer m.Close()

	call(t, m, "setParam", "/poslv", "/poslv/modes", []interface{}{"cmr", "rtcm"})
	v, ok := m.Param("/poslv/modes")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"cmr", "rtcm"}, v)

	res := call(t, m, "hasParam", "/poslv", "/poslv/modes")
	assert.Equal(t, true, res[2])

	res = call(t, m, "searchParam", "/poslv/sim", "modes")
	assert.Equal(t, "/poslv/modes", res[2])

	res = call(t, m, "deleteParam", "/poslv", "/poslv/modes")
	assert.Equal(t, statusSuccess, res[0])
	res = call(t, m, "deleteParam", "/poslv", "/poslv/modes")
	assert.Equal(t, statusError, res[0])

	res = call(t, m, "getParam", "/poslv", "/poslv/modes")
	assert.Equal(t, statusError, res[0])

	res = call(t, m, "getUri", "/poslv")
	assert.Equal(t, m.URI(), res[2])
}
