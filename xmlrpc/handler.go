package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Method is a function taking the decoded XML-RPC arguments and returning
// (result, error).
type Method interface{}

// Handler serves XML-RPC calls by dispatching to registered methods.
type Handler struct {
	mapping map[string]Method
	wait    sync.WaitGroup
}

func NewHandler(mapping map[string]Method) *Handler {
	return &Handler{mapping: mapping}
}

// WaitForShutdown blocks until in-flight calls have returned.
func (h *Handler) WaitForShutdown() {
	h.wait.Wait()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.wait.Add(1)
	defer h.wait.Done()

	var buf bytes.Buffer
	name, args, err := parseRequest(xml.NewDecoder(req.Body))
	if err != nil {
		_ = emitFault(&buf, 1, "Invalid request.")
	} else if result, fault := h.dispatch(name, args); fault != "" {
		_ = emitFault(&buf, 1, fault)
	} else if err := emitResponse(&buf, result); err != nil {
		buf.Reset()
		_ = emitFault(&buf, 1, fmt.Sprintf("Method '%s' returned an invalid result type.", name))
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// dispatch calls the named method and returns either its result or a
// fault string.
func (h *Handler) dispatch(name string, args []interface{}) (interface{}, string) {
	method, ok := h.mapping[name]
	if !ok {
		return nil, fmt.Sprintf("No method named '%s'.", name)
	}
	fn := reflect.ValueOf(method)
	ft := fn.Type()
	if ft.Kind() != reflect.Func || ft.NumOut() != 2 || ft.Out(1) != errorType {
		return nil, fmt.Sprintf("Method '%s' has an invalid signature.", name)
	}
	if ft.NumIn() != len(args) {
		return nil, fmt.Sprintf("Method '%s' takes %d arguments, got %d.", name, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := ft.In(i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			return nil, fmt.Sprintf("Method '%s' argument %d: %s is not %s.", name, i, v.Type(), want)
		}
		in[i] = v
	}

	out := fn.Call(in)
	if errValue := out[1]; !errValue.IsNil() {
		return nil, fmt.Sprintf("Method '%s' call failed: %v", name, errValue.Interface())
	}
	return out[0].Interface(), ""
}
