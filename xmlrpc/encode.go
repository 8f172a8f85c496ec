package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"reflect"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// emitValue writes the XML-RPC encoding of value without the enclosing
// <value> element. A nil value produces no output.
func emitValue(buf *bytes.Buffer, value interface{}) error {
	if bs, ok := value.([]byte); ok {
		buf.WriteString("<base64>")
		buf.WriteString(base64.StdEncoding.EncodeToString(bs))
		buf.WriteString("</base64>")
		return nil
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return nil
	}

	switch val.Kind() {
	case reflect.Bool:
		if val.Bool() {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatInt(val.Int(), 10))
		buf.WriteString("</int>")
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatUint(val.Uint(), 10))
		buf.WriteString("</int>")
	case reflect.Float32, reflect.Float64:
		buf.WriteString("<double>")
		buf.WriteString(strconv.FormatFloat(val.Float(), 'g', -1, 64))
		buf.WriteString("</double>")
	case reflect.String:
		buf.WriteString("<string>")
		buf.WriteString(xmlEscape(val.String()))
		buf.WriteString("</string>")
	case reflect.Array, reflect.Slice:
		buf.WriteString("<array><data>")
		for i := 0; i < val.Len(); i++ {
			buf.WriteString("<value>")
			if err := emitValue(buf, val.Index(i).Interface()); err != nil {
				return err
			}
			buf.WriteString("</value>")
		}
		buf.WriteString("</data></array>")
	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return errors.New("map key must be string")
		}
		keys := make([]string, 0, val.Len())
		for _, k := range val.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		buf.WriteString("<struct>")
		for _, k := range keys {
			buf.WriteString("<member><name>")
			buf.WriteString(xmlEscape(k))
			buf.WriteString("</name><value>")
			member := val.MapIndex(reflect.ValueOf(k).Convert(val.Type().Key()))
			if err := emitValue(buf, member.Interface()); err != nil {
				return err
			}
			buf.WriteString("</value></member>")
		}
		buf.WriteString("</struct>")
	default:
		return errors.Errorf("unsupported kind %s", val.Kind())
	}
	return nil
}

func emitRequest(buf *bytes.Buffer, method string, args ...interface{}) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	buf.WriteString(xmlEscape(method))
	buf.WriteString("</methodName><params>")
	for _, arg := range args {
		buf.WriteString("<param><value>")
		if err := emitValue(buf, arg); err != nil {
			return errors.Wrapf(err, "argument of %s", method)
		}
		buf.WriteString("</value></param>")
	}
	buf.WriteString("</params></methodCall>")
	return nil
}

func emitResponse(buf *bytes.Buffer, value interface{}) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><params><param><value>")
	if err := emitValue(buf, value); err != nil {
		return err
	}
	buf.WriteString("</value></param></params></methodResponse>")
	return nil
}

func emitFault(buf *bytes.Buffer, code int32, message string) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><fault><value>")
	fault := map[string]interface{}{
		"faultCode":   code,
		"faultString": message,
	}
	if err := emitValue(buf, fault); err != nil {
		return err
	}
	buf.WriteString("</value></fault></methodResponse>")
	return nil
}
