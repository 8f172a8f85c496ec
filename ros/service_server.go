package ros

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// headerTimeout bounds the connection header exchange of a session.
const headerTimeout = 5 * time.Second

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type serviceResult struct {
	ok      bool
	payload []byte
}

type defaultServiceServer struct {
	node         *defaultNode
	logger       *logrus.Entry
	service      string
	srvType      ServiceType
	handler      reflect.Value
	listener     net.Listener
	uri          string
	sessions     map[net.Conn]struct{}
	sessionsMu   sync.Mutex
	sessionGroup sync.WaitGroup
	closed       chan struct{}
	shutdownOnce sync.Once
}

// checkHandler verifies that handler is a func(<service>) error for srvType.
func checkHandler(srvType ServiceType, handler interface{}) (reflect.Value, error) {
	fn := reflect.ValueOf(handler)
	if fn.Kind() != reflect.Func {
		return reflect.Value{}, errors.Errorf("service handler must be a func, got %T", handler)
	}
	ft := fn.Type()
	if ft.NumIn() != 1 || ft.NumOut() != 1 || ft.Out(0) != errorType {
		return reflect.Value{}, errors.Errorf("service handler must be func(srv) error, got %s", ft)
	}
	srvGoType := reflect.TypeOf(srvType.NewService())
	if !srvGoType.AssignableTo(ft.In(0)) {
		return reflect.Value{}, errors.Errorf("service handler takes %s, service type produces %s", ft.In(0), srvGoType)
	}
	return fn, nil
}

func newDefaultServiceServer(node *defaultNode, service string, srvType ServiceType, handler interface{}) (*defaultServiceServer, error) {
	fn, err := checkHandler(srvType, handler)
	if err != nil {
		return nil, err
	}
	listener, port, err := listenTCP(node.listenIP)
	if err != nil {
		return nil, errors.Wrapf(err, "listening for %s", service)
	}

	server := &defaultServiceServer{
		node:     node,
		logger:   node.logger.WithField("service", service),
		service:  service,
		srvType:  srvType,
		handler:  fn,
		listener: listener,
		uri:      fmt.Sprintf("rosrpc://%s:%s", node.hostname, port),
		sessions: make(map[net.Conn]struct{}),
		closed:   make(chan struct{}),
	}
	server.logger.Debugf("ServiceServer listen %s", server.uri)

	_, err = node.callMaster("registerService", service, server.uri, node.xmlrpcURI)
	if err != nil {
		listener.Close()
		return nil, errors.Wrapf(err, "registering service %s", service)
	}

	node.waitGroup.Add(1)
	go server.start()
	return server, nil
}

func (s *defaultServiceServer) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.closed)
		s.listener.Close()

		if _, err := s.node.callMaster("unregisterService", s.service, s.uri); err != nil {
			s.logger.WithError(err).Warn("unregisterService failed")
		}

		s.sessionsMu.Lock()
		for conn := range s.sessions {
			conn.Close()
		}
		s.sessionsMu.Unlock()
		s.sessionGroup.Wait()
	})
}

// accept loop
func (s *defaultServiceServer) start() {
	defer s.node.waitGroup.Done()
	s.logger.Debugf("service server start listen %s", s.listener.Addr())

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closed:
			default:
				s.logger.WithError(err).Error("accept failed")
			}
			return
		}
		s.logger.Debugf("Connected from %s", conn.RemoteAddr())

		s.sessionsMu.Lock()
		select {
		case <-s.closed:
			s.sessionsMu.Unlock()
			conn.Close()
			return
		default:
		}
		s.sessions[conn] = struct{}{}
		s.sessionGroup.Add(1)
		s.sessionsMu.Unlock()

		go func() {
			defer s.sessionGroup.Done()
			defer func() {
				s.sessionsMu.Lock()
				delete(s.sessions, conn)
				s.sessionsMu.Unlock()
				conn.Close()
			}()
			if err := s.serve(conn); err != nil && err != io.EOF {
				s.logger.WithError(err).Warn("session error")
			}
		}()
	}
}

func (s *defaultServiceServer) responseHeaders() []header {
	return []header{
		{"service", s.service},
		{"md5sum", s.srvType.MD5Sum()},
		{"type", s.srvType.Name()},
		{"request_type", s.srvType.RequestType().Name()},
		{"response_type", s.srvType.ResponseType().Name()},
		{"callerid", s.node.qualifiedName},
	}
}

// serve runs one client session.
func (s *defaultServiceServer) serve(conn net.Conn) error {
	// 1. Read request header
	_ = conn.SetDeadline(time.Now().Add(headerTimeout))
	reqHeader, err := readConnectionHeader(conn)
	if err != nil {
		return errors.Wrap(err, "reading request header")
	}
	reqHeaderMap := headerMap(reqHeader)
	for _, h := range reqHeader {
		s.logger.Debugf("  `%s` = `%s`", h.key, h.value)
	}

	md5sum := s.srvType.MD5Sum()
	if theirs := reqHeaderMap["md5sum"]; theirs != "*" && theirs != md5sum {
		msg := fmt.Sprintf("request from [%s]: md5sums do not match: [%s] vs. [%s]",
			reqHeaderMap["callerid"], theirs, md5sum)
		_ = writeConnectionHeader([]header{{"error", msg}}, conn)
		return errors.Wrap(ErrIncompatibleService, msg)
	}

	// 2. Write response header
	if err := writeConnectionHeader(s.responseHeaders(), conn); err != nil {
		return errors.Wrap(err, "writing response header")
	}
	if reqHeaderMap["probe"] == "1" {
		s.logger.Debug("TCPROS header 'probe' detected. Session closed")
		return nil
	}
	_ = conn.SetDeadline(time.Time{})

	persistent := reqHeaderMap["persistent"] == "1"
	for {
		// 3. Read request
		request, err := readFrame(conn)
		if err != nil {
			return err
		}
		result, err := s.dispatch(request)
		if err != nil {
			return err
		}

		// 4. Write OK byte and response or error message
		var ok byte
		if result.ok {
			ok = 1
		}
		if _, err := conn.Write([]byte{ok}); err != nil {
			return err
		}
		if err := writeFrame(conn, result.payload); err != nil {
			return err
		}
		if !persistent {
			return nil
		}
	}
}

// dispatch runs the handler on the node's spin goroutine and waits for it.
func (s *defaultServiceServer) dispatch(request []byte) (serviceResult, error) {
	resultChan := make(chan serviceResult, 1)
	job := func() { resultChan <- s.invoke(request) }
	if !s.node.enqueue(job) {
		return serviceResult{}, ErrNodeShutdown
	}
	select {
	case result := <-resultChan:
		return result, nil
	case <-s.closed:
		return serviceResult{}, errors.New("service server shut down")
	case <-s.node.done:
		return serviceResult{}, ErrNodeShutdown
	}
}

func (s *defaultServiceServer) invoke(request []byte) (result serviceResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("service handler panic: %v", r)
			result = serviceResult{payload: []byte(fmt.Sprintf("service handler panic: %v", r))}
		}
	}()

	srv := s.srvType.NewService()
	if err := srv.ReqMessage().Deserialize(bytes.NewReader(request)); err != nil {
		return serviceResult{payload: []byte(fmt.Sprintf("malformed request: %v", err))}
	}
	out := s.handler.Call([]reflect.Value{reflect.ValueOf(srv)})
	if errValue := out[0]; !errValue.IsNil() {
		err := errValue.Interface().(error)
		s.logger.WithError(err).Debug("Service callback failure")
		return serviceResult{payload: []byte(err.Error())}
	}

	var buf bytes.Buffer
	if err := srv.ResMessage().Serialize(&buf); err != nil {
		return serviceResult{payload: []byte(fmt.Sprintf("serializing response: %v", err))}
	}
	return serviceResult{ok: true, payload: buf.Bytes()}
}
