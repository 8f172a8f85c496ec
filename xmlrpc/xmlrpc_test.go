package xmlrpc

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestEmitScalars(t *testing.T) {
	cases := []struct {
		value    interface{}
		expected string
	}{
		{nil, ""},
		{true, "<boolean>1</boolean>"},
		{false, "<boolean>0</boolean>"},
		{42, "<int>42</int>"},
		{uint16(7), "<int>7</int>"},
		{3.14, "<double>3.14</double>"},
		{"Hello, world!", "<string>Hello, world!</string>"},
		{"a<b", "<string>a&lt;b</string>"},
		{[]byte("ABCDEFG"), "<base64>QUJDREVGRw==</base64>"},
	}
	for _, c := range cases {
		var buffer bytes.Buffer
		if err := emitValue(&buffer, c.value); err != nil {
			t.Error(err)
			continue
		}
		if s := buffer.String(); s != c.expected {
			t.Errorf("emit %v: got %s, want %s", c.value, s, c.expected)
		}
	}
}

func TestEmitArray(t *testing.T) {
	expected := "<array><data>"
	expected += "<value><int>12</int></value>"
	expected += "<value><string>Egypt</string></value>"
	expected += "<value><boolean>0</boolean></value>"
	expected += "<value><int>-31</int></value>"
	expected += "</data></array>"

	for _, xs := range []interface{}{
		[...]interface{}{12, "Egypt", false, -31},
		[]interface{}{12, "Egypt", false, -31},
	} {
		var buffer bytes.Buffer
		if err := emitValue(&buffer, xs); err != nil {
			t.Error(err)
		}
		if s := buffer.String(); s != expected {
			t.Error(s)
		}
	}
}

func TestEmitStructSortsMembers(t *testing.T) {
	var buffer bytes.Buffer
	xs := map[string]interface{}{"upperBound": 139, "lowerBound": 18}
	if err := emitValue(&buffer, xs); err != nil {
		t.Error(err)
	}
	expected := "<struct><member>"
	expected += "<name>lowerBound</name>"
	expected += "<value><int>18</int></value>"
	expected += "</member><member>"
	expected += "<name>upperBound</name>"
	expected += "<value><int>139</int></value>"
	expected += "</member></struct>"
	if s := buffer.String(); s != expected {
		t.Error(s)
	}
}

func TestEmitRejectsNonStringKeys(t *testing.T) {
	var buffer bytes.Buffer
	if err := emitValue(&buffer, map[int]int{1: 2}); err == nil {
		t.Error("expected an error for int map keys")
	}
}

func TestEmitRequest(t *testing.T) {
	var buffer bytes.Buffer
	if err := emitRequest(&buffer, "lookupService", "/set_cmr", "/poslv/set_dgps"); err != nil {
		t.Fatal(err)
	}
	expected := xml.Header
	expected += "<methodCall>"
	expected += "<methodName>lookupService</methodName>"
	expected += "<params>"
	expected += "<param><value><string>/set_cmr</string></value></param>"
	expected += "<param><value><string>/poslv/set_dgps</string></value></param>"
	expected += "</params>"
	expected += "</methodCall>"
	if s := buffer.String(); s != expected {
		t.Error(s)
	}
}

func TestEmitFault(t *testing.T) {
	var buffer bytes.Buffer
	if err := emitFault(&buffer, 42, "failed"); err != nil {
		t.Fatal(err)
	}
	expected := xml.Header
	expected += "<methodResponse><fault><value>"
	expected += "<struct><member>"
	expected += "<name>faultCode</name>"
	expected += "<value><int>42</int></value>"
	expected += "</member><member>"
	expected += "<name>faultString</name>"
	expected += "<value><string>failed</string></value>"
	expected += "</member></struct>"
	expected += "</value></fault></methodResponse>"
	if s := buffer.String(); s != expected {
		t.Error(s)
	}
}

func decodeValue(t *testing.T, source string) interface{} {
	t.Helper()
	decoder := xml.NewDecoder(bytes.NewBufferString(source))
	_, _ = decoder.Token() // <value>
	value, err := parseValue(decoder)
	if err != nil {
		t.Fatal(err)
	}
	return value
}

func TestParseScalars(t *testing.T) {
	if v := decodeValue(t, "<value><boolean>1</boolean></value>"); v != true {
		t.Error(v)
	}
	if v := decodeValue(t, "<value><int>-432</int></value>"); v != int32(-432) {
		t.Error(v)
	}
	if v := decodeValue(t, "<value><i4>43</i4></value>"); v != int32(43) {
		t.Error(v)
	}
	if v := decodeValue(t, "<value><double>-273.5</double></value>"); v != -273.5 {
		t.Error(v)
	}
	if v := decodeValue(t, "<value><string>Hello, world!</string></value>"); v != "Hello, world!" {
		t.Error(v)
	}
	if v := decodeValue(t, "<value><string></string></value>"); v != "" {
		t.Error(v)
	}
	if v := decodeValue(t, "<value>untyped</value>"); v != "untyped" {
		t.Error(v)
	}
	if v := decodeValue(t, "<value></value>"); v != "" {
		t.Error(v)
	}
	if v, ok := decodeValue(t, "<value><base64>QUJDREVGRw==</base64></value>").([]byte); !ok || string(v) != "ABCDEFG" {
		t.Error(v)
	}
}

func TestParseInvalidBoolean(t *testing.T) {
	decoder := xml.NewDecoder(bytes.NewBufferString("<value><boolean>2</boolean></value>"))
	_, _ = decoder.Token()
	if _, err := parseValue(decoder); err == nil {
		t.Error("expected an error")
	}
}

func TestParseArray(t *testing.T) {
	source := `<value><array>
                   <data>
                       <value><i4>12</i4></value>
                       <value><string>Egypt</string></value>
                       <value><boolean>0</boolean></value>
                       <value><i4>-31</i4></value>
                   </data>
               </array></value>`
	x, ok := decodeValue(t, source).([]interface{})
	if !ok || len(x) != 4 {
		t.Fatal(x)
	}
	if x[0] != int32(12) || x[1] != "Egypt" || x[2] != false || x[3] != int32(-31) {
		t.Error(x)
	}
}

func TestParseStruct(t *testing.T) {
	source := `<value><struct>
                   <member>
                       <name>lowerBound</name>
                       <value><i4>18</i4></value>
                   </member>
                   <member>
                       <name>upperBound</name>
                       <value><i4>139</i4></value>
                   </member>
               </struct></value>`
	x, ok := decodeValue(t, source).(map[string]interface{})
	if !ok || len(x) != 2 {
		t.Fatal(x)
	}
	if x["lowerBound"] != int32(18) || x["upperBound"] != int32(139) {
		t.Error(x)
	}
}

func TestParseRequest(t *testing.T) {
	source := xml.Header
	source += `<methodCall>
                   <methodName>doSomething</methodName>
                   <params>
                       <param><value><boolean>1</boolean></value></param>
                       <param><value><int>42</int></value></param>
                   </params>
               </methodCall>`
	name, args, err := parseRequest(xml.NewDecoder(bytes.NewBufferString(source)))
	if err != nil {
		t.Fatal(err)
	}
	if name != "doSomething" {
		t.Error(name)
	}
	if len(args) != 2 || args[0] != true || args[1] != int32(42) {
		t.Error(args)
	}
}

func TestParseLookupServiceResponse(t *testing.T) {
	source := `<?xml version="1.0"?>
<methodResponse><params><param>
<value><array><data>
  <value><i4>1</i4></value>
  <value>rosrpc URI: [rosrpc://hedgehog:52060]</value>
  <value>rosrpc://hedgehog:52060</value>
</data></array></value>
</param></params></methodResponse>`
	ok, result, err := parseResponse(xml.NewDecoder(bytes.NewBufferString(source)))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("unexpected fault")
	}
	outer, ok := result.([]interface{})
	if !ok || len(outer) != 3 {
		t.Fatalf("result should be a 3-array, got %v", result)
	}
	if outer[0] != int32(1) {
		t.Errorf("status should be 1, was %v", outer[0])
	}
	if outer[2] != "rosrpc://hedgehog:52060" {
		t.Error(outer[2])
	}
}

func TestParseFault(t *testing.T) {
	source := xml.Header
	source += `<methodResponse>
                   <fault>
                       <value>
                           <struct>
                               <member>
                                   <name>faultCode</name>
                                   <value><int>42</int></value>
                               </member>
                               <member>
                                   <name>faultString</name>
                                   <value><string>failed</string></value>
                               </member>
                           </struct>
                       </value>
                   </fault>
               </methodResponse>`
	ok, result, err := parseResponse(xml.NewDecoder(bytes.NewBufferString(source)))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected a fault")
	}
	var fault *Fault
	if !errors.As(faultFromValue(result), &fault) {
		t.Fatalf("expected *Fault, got %v", result)
	}
	if fault.Code != 42 || fault.String != "failed" {
		t.Error(fault)
	}
}

type myDispatcher struct {
	X int32
}

func (h *myDispatcher) addTwoInts(a int32, b int32) (int32, error) {
	return h.X * (a + b), nil
}

func (h *myDispatcher) fail(caller string) (interface{}, error) {
	return nil, errors.New("boom")
}

func TestServer(t *testing.T) {
	d := myDispatcher{2}
	handler := NewHandler(map[string]Method{
		"addTwoInts": d.addTwoInts,
		"fail":       d.fail,
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	ctx := context.Background()
	result, err := Call(ctx, server.URL, "addTwoInts", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if result != int32(6) {
		t.Error(result)
	}

	var fault *Fault
	if _, err := Call(ctx, server.URL, "addTwoInts", 1); !errors.As(err, &fault) {
		t.Errorf("wrong arity should fault, got %v", err)
	}
	if _, err := Call(ctx, server.URL, "addTwoInts", "1", 2); !errors.As(err, &fault) {
		t.Errorf("wrong argument type should fault, got %v", err)
	}
	if _, err := Call(ctx, server.URL, "fail", "me"); !errors.As(err, &fault) {
		t.Errorf("method error should fault, got %v", err)
	}
	if _, err := Call(ctx, server.URL, "missing"); !errors.As(err, &fault) {
		t.Errorf("unknown method should fault, got %v", err)
	}

	server.Close()
	handler.WaitForShutdown()
}

func TestCallHonoursContext(t *testing.T) {
	handler := NewHandler(map[string]Method{})
	server := httptest.NewServer(handler)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Call(ctx, server.URL, "getPid", "/x"); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}
