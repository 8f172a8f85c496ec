package poslvsim

import (
	"testing"

	"github.com/edwinhayes/poslv/ros"
	"github.com/edwinhayes/poslv/ros/rostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModes(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    []string
		wantErr bool
	}{
		{"list", []interface{}{"cmr", "rtcm"}, []string{"cmr", "rtcm"}, false},
		{"strings", []string{"none"}, []string{"none"}, false},
		{"json", `["cmr", "rtcm"]`, []string{"cmr", "rtcm"}, false},
		{"json non string", `["cmr", 3]`, nil, true},
		{"bad json", `cmr`, nil, true},
		{"list non string", []interface{}{"cmr", int32(1)}, nil, true},
		{"number", int32(4), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseModes(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModesFromParam(t *testing.T) {
	master, err := rostest.NewMaster()
	require.NoError(t, err)
	defer master.Close()

	node, err := ros.NewNode("poslv", []string{
		"__master:=" + master.URI(),
		"__hostname:=localhost",
		`_modes:=["cmr","rtcm"]`,
	})
	require.NoError(t, err)
	defer node.Shutdown()

	modes, err := ModesFromParam(node)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmr", "rtcm"}, modes)
}

func TestModesFromParamUnset(t *testing.T) {
	master, err := rostest.NewMaster()
	require.NoError(t, err)
	defer master.Close()

	node, err := ros.NewNode("poslv", []string{"__master:=" + master.URI(), "__hostname:=localhost"})
	require.NoError(t, err)
	defer node.Shutdown()

	modes, err := ModesFromParam(node)
	require.NoError(t, err)
	assert.Nil(t, modes)
}
