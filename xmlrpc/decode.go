package xmlrpc

import (
	"encoding/base64"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// nextStart skips character data and returns the next start element.
func nextStart(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.EndElement:
			return xml.StartElement{}, errors.Errorf("unexpected </%s>", t.Name.Local)
		}
	}
}

func expectStart(d *xml.Decoder, name string) error {
	se, err := nextStart(d)
	if err != nil {
		return err
	}
	if se.Name.Local != name {
		return errors.Errorf("unexpected <%s>, want <%s>", se.Name.Local, name)
	}
	return nil
}

func expectEnd(d *xml.Decoder, name string) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != name {
				return errors.Errorf("unexpected </%s>, want </%s>", t.Name.Local, name)
			}
			return nil
		case xml.StartElement:
			return errors.Errorf("unexpected <%s>, want </%s>", t.Name.Local, name)
		}
	}
}

// readText collects the character data of the current element up to and
// including its end tag.
func readText(d *xml.Decoder, name string) (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if t.Name.Local != name {
				return "", errors.Errorf("unexpected </%s> in <%s>", t.Name.Local, name)
			}
			return sb.String(), nil
		case xml.StartElement:
			return "", errors.Errorf("unexpected <%s> in <%s>", t.Name.Local, name)
		}
	}
}

// parseValue parses a value after its <value> tag has been read. On
// success the closing </value> has been consumed too. Untyped content is
// a string.
func parseValue(d *xml.Decoder) (interface{}, error) {
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			return text.String(), nil
		case xml.StartElement:
			v, err := parseTyped(d, t)
			if err != nil {
				return nil, err
			}
			if err := expectEnd(d, "value"); err != nil {
				return nil, err
			}
			return v, nil
		}
	}
}

func parseTyped(d *xml.Decoder, se xml.StartElement) (interface{}, error) {
	name := se.Name.Local
	switch name {
	case "boolean":
		s, err := readText(d, name)
		if err != nil {
			return nil, err
		}
		switch strings.TrimSpace(s) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, errors.Errorf("invalid boolean %q", s)
	case "i4", "int":
		s, err := readText(d, name)
		if err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, errors.Wrap(err, "int")
		}
		return int32(i), nil
	case "double":
		s, err := readText(d, name)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, errors.Wrap(err, "double")
		}
		return f, nil
	case "string":
		return readText(d, name)
	case "base64":
		s, err := readText(d, name)
		if err != nil {
			return nil, err
		}
		bs, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.Wrap(err, "base64")
		}
		return bs, nil
	case "nil":
		return nil, expectEnd(d, name)
	case "array":
		return parseArray(d)
	case "struct":
		return parseStruct(d)
	}
	return nil, errors.Errorf("unsupported type <%s>", name)
}

func parseArray(d *xml.Decoder) (interface{}, error) {
	if err := expectStart(d, "data"); err != nil {
		return nil, err
	}
	a := []interface{}{}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "value" {
				return nil, errors.Errorf("unexpected <%s> in array", t.Name.Local)
			}
			v, err := parseValue(d)
			if err != nil {
				return nil, err
			}
			a = append(a, v)
		case xml.EndElement:
			if t.Name.Local != "data" {
				return nil, errors.Errorf("unexpected </%s> in array", t.Name.Local)
			}
			return a, expectEnd(d, "array")
		}
	}
}

func parseStruct(d *xml.Decoder) (interface{}, error) {
	m := make(map[string]interface{})
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "member" {
				return nil, errors.Errorf("unexpected <%s> in struct", t.Name.Local)
			}
			if err := expectStart(d, "name"); err != nil {
				return nil, err
			}
			key, err := readText(d, "name")
			if err != nil {
				return nil, err
			}
			if err := expectStart(d, "value"); err != nil {
				return nil, err
			}
			v, err := parseValue(d)
			if err != nil {
				return nil, err
			}
			m[key] = v
			if err := expectEnd(d, "member"); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return m, nil
		}
	}
}

func parseRequest(d *xml.Decoder) (string, []interface{}, error) {
	if err := expectStart(d, "methodCall"); err != nil {
		return "", nil, err
	}
	if err := expectStart(d, "methodName"); err != nil {
		return "", nil, err
	}
	method, err := readText(d, "methodName")
	if err != nil {
		return "", nil, err
	}
	method = strings.TrimSpace(method)

	var args []interface{}
	for {
		tok, err := d.Token()
		if err != nil {
			return "", nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "value" {
				v, err := parseValue(d)
				if err != nil {
					return "", nil, err
				}
				args = append(args, v)
			}
		case xml.EndElement:
			if t.Name.Local == "methodCall" {
				return method, args, nil
			}
		}
	}
}

// parseResponse returns ok=false with the fault value when the response
// is a fault.
func parseResponse(d *xml.Decoder) (bool, interface{}, error) {
	if err := expectStart(d, "methodResponse"); err != nil {
		return false, nil, err
	}
	se, err := nextStart(d)
	if err != nil {
		return false, nil, err
	}
	switch se.Name.Local {
	case "params":
		if err := expectStart(d, "param"); err != nil {
			return false, nil, err
		}
		if err := expectStart(d, "value"); err != nil {
			return false, nil, err
		}
		v, err := parseValue(d)
		return true, v, err
	case "fault":
		if err := expectStart(d, "value"); err != nil {
			return false, nil, err
		}
		v, err := parseValue(d)
		return false, v, err
	}
	return false, nil, errors.Errorf("unexpected <%s> in methodResponse", se.Name.Local)
}
