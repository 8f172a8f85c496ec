// Package rostest provides a minimal in-process ROS master so nodes can
// be exercised without a roscore.
package rostest

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/edwinhayes/poslv/xmlrpc"
	"github.com/pkg/errors"
)

const (
	statusError   int32 = -1
	statusSuccess int32 = 1
)

type serviceEntry struct {
	callerID   string
	serviceURI string
	callerURI  string
}

// Master implements the service and parameter parts of the ROS master
// API over XML-RPC.
type Master struct {
	mu       sync.Mutex
	services map[string]serviceEntry
	params   map[string]interface{}
	listener net.Listener
	server   *http.Server
	handler  *xmlrpc.Handler
	uri      string
}

// NewMaster starts a master on an ephemeral loopback port.
func NewMaster() (*Master, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, errors.Wrap(err, "master listener")
	}
	m := &Master{
		services: make(map[string]serviceEntry),
		params:   make(map[string]interface{}),
		listener: listener,
		uri:      fmt.Sprintf("http://%s", listener.Addr()),
	}
	m.handler = xmlrpc.NewHandler(map[string]xmlrpc.Method{
		"registerService":   m.registerService,
		"unregisterService": m.unregisterService,
		"lookupService":     m.lookupService,
		"getParam":          m.getParam,
		"setParam":          m.setParam,
		"hasParam":          m.hasParam,
		"deleteParam":       m.deleteParam,
		"searchParam":       m.searchParam,
		"getUri":            m.getURI,
		"getPid":            m.getPid,
	})
	m.server = &http.Server{Handler: m.handler}
	go m.server.Serve(listener)
	return m, nil
}

// URI is the master's XML-RPC address, suitable for ROS_MASTER_URI or
// the __master special argument.
func (m *Master) URI() string {
	return m.uri
}

// Close stops the master and waits for in-flight calls.
func (m *Master) Close() error {
	err := m.server.Close()
	m.handler.WaitForShutdown()
	return err
}

// LookupService returns the registered rosrpc URI of service.
func (m *Master) LookupService(service string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.services[service]
	return entry.serviceURI, ok
}

// Param returns a parameter value as stored by setParam.
func (m *Master) Param(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.params[key]
	return v, ok
}

func result(code int32, message string, value interface{}) (interface{}, error) {
	return []interface{}{code, message, value}, nil
}

func (m *Master) registerService(callerID, service, serviceURI, callerURI string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[service] = serviceEntry{callerID, serviceURI, callerURI}
	return result(statusSuccess, fmt.Sprintf("Registered [%s] as provider of [%s]", callerID, service), int32(1))
}

func (m *Master) unregisterService(callerID, service, serviceURI string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.services[service]
	if !ok || entry.serviceURI != serviceURI {
		return result(statusSuccess, fmt.Sprintf("[%s] is not a provider of [%s]", callerID, service), int32(0))
	}
	delete(m.services, service)
	return result(statusSuccess, fmt.Sprintf("Unregistered [%s] as provider of [%s]", callerID, service), int32(1))
}

func (m *Master) lookupService(callerID, service string) (interface{}, error) {
	uri, ok := m.LookupService(service)
	if !ok {
		return result(statusError, fmt.Sprintf("no provider for [%s]", service), "")
	}
	return result(statusSuccess, fmt.Sprintf("rosrpc URI: [%s]", uri), uri)
}

func (m *Master) getParam(callerID, key string) (interface{}, error) {
	v, ok := m.Param(key)
	if !ok {
		return result(statusError, fmt.Sprintf("Parameter [%s] is not set", key), int32(0))
	}
	return result(statusSuccess, fmt.Sprintf("Parameter [%s]", key), v)
}

func (m *Master) setParam(callerID, key string, value interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[key] = value
	return result(statusSuccess, fmt.Sprintf("parameter %s set", key), int32(0))
}

func (m *Master) hasParam(callerID, key string) (interface{}, error) {
	_, ok := m.Param(key)
	return result(statusSuccess, key, ok)
}

func (m *Master) deleteParam(callerID, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.params[key]; !ok {
		return result(statusError, fmt.Sprintf("parameter [%s] is not set", key), int32(0))
	}
	delete(m.params, key)
	return result(statusSuccess, fmt.Sprintf("parameter %s deleted", key), int32(0))
}

// searchParam looks for key in the caller's namespace and then in each
// enclosing namespace up to the root.
func (m *Master) searchParam(callerID, key string) (interface{}, error) {
	key = strings.TrimPrefix(key, "/")
	ns := callerID
	for {
		idx := strings.LastIndex(ns, "/")
		if idx < 0 {
			break
		}
		ns = ns[:idx]
		candidate := ns + "/" + key
		if _, ok := m.Param(candidate); ok {
			return result(statusSuccess, fmt.Sprintf("Found [%s]", candidate), candidate)
		}
	}
	return result(statusError, fmt.Sprintf("Cannot find [%s]", key), "")
}

func (m *Master) getURI(callerID string) (interface{}, error) {
	return result(statusSuccess, "", m.uri)
}

func (m *Master) getPid(callerID string) (interface{}, error) {
	return result(statusSuccess, "", os.Getpid())
}
