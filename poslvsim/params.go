package poslvsim

import (
	"github.com/buger/jsonparser"
	"github.com/edwinhayes/poslv/ros"
	"github.com/pkg/errors"
)

// ModesParam is the private parameter listing accepted modes.
const ModesParam = "~modes"

// ModesFromParam reads the accepted modes from the node's private
// parameters. It returns nil when the parameter is not set. The value may
// be a list or a string holding a JSON array.
func ModesFromParam(node ros.Node) ([]string, error) {
	ok, err := node.HasParam(ModesParam)
	if err != nil {
		return nil, errors.Wrap(err, "checking modes parameter")
	}
	if !ok {
		return nil, nil
	}
	value, err := node.GetParam(ModesParam)
	if err != nil {
		return nil, errors.Wrap(err, "reading modes parameter")
	}
	return parseModes(value)
}

func parseModes(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []interface{}:
		modes := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("mode %v is not a string", item)
			}
			modes = append(modes, s)
		}
		return modes, nil
	case []string:
		return v, nil
	case string:
		return parseModesJSON([]byte(v))
	}
	return nil, errors.Errorf("unsupported modes parameter of type %T", value)
}

func parseModesJSON(data []byte) ([]string, error) {
	var modes []string
	var inner error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if inner != nil {
			return
		}
		if err != nil {
			inner = err
			return
		}
		if dataType != jsonparser.String {
			inner = errors.Errorf("mode %s is not a string", value)
			return
		}
		s, err := jsonparser.ParseString(value)
		if err != nil {
			inner = err
			return
		}
		modes = append(modes, s)
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing modes")
	}
	if inner != nil {
		return nil, errors.Wrap(inner, "parsing modes")
	}
	return modes, nil
}
