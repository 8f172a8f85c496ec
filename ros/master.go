package ros

import (
	"context"
	"net/url"

	"github.com/edwinhayes/poslv/xmlrpc"
	"github.com/pkg/errors"
)

const (
	//APIStatusError is an API call which returned an Error
	APIStatusError = -1
	//APIStatusFailure is a failed API call
	APIStatusFailure = 0
	//APIStatusSuccess is a successful API call
	APIStatusSuccess = 1
)

// callRosAPI performs an XML-RPC call on the master or a slave and unpacks
// the [code, statusMessage, value] triplet every ROS API returns.
func callRosAPI(ctx context.Context, calleeURI string, method string, args ...interface{}) (interface{}, error) {
	result, err := xmlrpc.Call(ctx, calleeURI, method, args...)
	if err != nil {
		return nil, err
	}

	xs, ok := result.([]interface{})
	if !ok {
		return nil, errors.Errorf("malformed %s result", method)
	}
	if len(xs) != 3 {
		return nil, errors.Errorf("malformed %s result: length must be 3 but %d", method, len(xs))
	}
	code, ok := xs[0].(int32)
	if !ok {
		return nil, errors.Errorf("%s: status code is not int", method)
	}
	message, ok := xs[1].(string)
	if !ok {
		return nil, errors.Errorf("%s: status message is not string", method)
	}
	if code != APIStatusSuccess {
		return nil, &APIError{Method: method, Code: code, Message: message}
	}
	return xs[2], nil
}

// buildRosAPIResult builds the XML-RPC triplet returned by slave API methods.
func buildRosAPIResult(code int32, message string, value interface{}) interface{} {
	return []interface{}{code, message, value}
}

// lookupService asks the master for the rosrpc URI of service.
func lookupService(ctx context.Context, masterURI, callerID, service string) (*url.URL, error) {
	result, err := callRosAPI(ctx, masterURI, "lookupService", callerID, service)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, errors.Wrapf(ErrServiceNotFound, "%s: %s", service, apiErr.Message)
		}
		return nil, errors.Wrapf(err, "lookupService %s", service)
	}
	raw, ok := result.(string)
	if !ok {
		return nil, errors.New("result of 'lookupService' is not a string")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "service URI %q", raw)
	}
	if u.Scheme != "rosrpc" || u.Host == "" {
		return nil, errors.Errorf("service URI %q is not rosrpc://host:port", raw)
	}
	return u, nil
}
