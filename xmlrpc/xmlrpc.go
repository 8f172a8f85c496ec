// Package xmlrpc is a small XML-RPC client and server sufficient for the
// ROS master and slave APIs.
package xmlrpc

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Fault is a well-formed XML-RPC fault returned by the remote side.
type Fault struct {
	Code   int32
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("XMLRPC fault: code=%d string=%s", f.Code, f.String)
}

func faultFromValue(v interface{}) error {
	m, ok := v.(map[string]interface{})
	if !ok {
		return errors.New("malformed XMLRPC fault response")
	}
	code, ok := m["faultCode"].(int32)
	if !ok {
		return errors.New("malformed XMLRPC fault response")
	}
	s, _ := m["faultString"].(string)
	return &Fault{Code: code, String: s}
}

// Call invokes method at url and returns the decoded result.
func Call(ctx context.Context, url string, method string, args ...interface{}) (interface{}, error) {
	var body bytes.Buffer
	if err := emitRequest(&body, method, args...); err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "text/xml")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "sending %s", method)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s: HTTP status %s", method, res.Status)
	}

	ok, result, err := parseResponse(xml.NewDecoder(res.Body))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s response", method)
	}
	if !ok {
		return nil, faultFromValue(result)
	}
	return result, nil
}
