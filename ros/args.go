package ros

import (
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// Remap separates the two sides of a command-line remapping argument.
const Remap = ":="

// processArguments splits process arguments into name remappings
// (from:=to), private parameters (_key:=value), special keys
// (__name:=value) and everything else.
func processArguments(args []string) (NameMap, NameMap, NameMap, []string) {
	mapping := make(NameMap)
	params := make(NameMap)
	specials := make(NameMap)
	rest := make([]string, 0)
	for _, arg := range args {
		components := strings.Split(arg, Remap)
		if len(components) != 2 {
			rest = append(rest, arg)
			continue
		}
		key, value := components[0], components[1]
		switch {
		case strings.HasPrefix(key, "__"):
			specials[key] = value
		case strings.HasPrefix(key, "_"):
			params[key[1:]] = value
		default:
			mapping[key] = value
		}
	}
	return mapping, params, specials, rest
}

// loadParamFromString decodes a parameter value given on the command
// line. JSON scalars, arrays and objects are decoded; anything else is
// kept as a plain string.
func loadParamFromString(s string) (interface{}, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return s, nil
	}
	// A trailing delimiter terminates bare scalars such as 42 or true.
	data := []byte(trimmed + " ")
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return s, nil
	}
	decoded, err := decodeJSONValue(value, dataType)
	if err != nil {
		return s, nil
	}
	return decoded, nil
}

func decodeJSONValue(value []byte, dataType jsonparser.ValueType) (interface{}, error) {
	switch dataType {
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		if i, err := strconv.ParseInt(string(value), 10, 32); err == nil {
			return int32(i), nil
		}
		return jsonparser.ParseFloat(value)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Array:
		list := []interface{}{}
		var inner error
		_, err := jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			item, err := decodeJSONValue(v, t)
			if err != nil {
				inner = err
				return
			}
			list = append(list, item)
		})
		if err != nil {
			return nil, err
		}
		return list, inner
	case jsonparser.Object:
		m := make(map[string]interface{})
		err := jsonparser.ObjectEach(value, func(k []byte, v []byte, t jsonparser.ValueType, _ int) error {
			item, err := decodeJSONValue(v, t)
			if err != nil {
				return err
			}
			m[string(k)] = item
			return nil
		})
		return m, err
	}
	return nil, jsonparser.UnknownValueTypeError
}
