package ros

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/edwinhayes/poslv/xmlrpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// masterTimeout bounds parameter calls on the master, which take no
// caller context.
const masterTimeout = 5 * time.Second

// *defaultNode implements Node interface
type defaultNode struct {
	name           string
	namespace      string
	qualifiedName  string
	masterURI      string
	xmlrpcURI      string
	xmlrpcListener net.Listener
	xmlrpcServer   *http.Server
	xmlrpcHandler  *xmlrpc.Handler
	servers        map[string]*defaultServiceServer
	serversMutex   sync.Mutex
	jobChan        chan func()
	interruptChan  chan os.Signal
	logger         *logrus.Entry
	done           chan struct{}
	stopOnce       sync.Once
	shutdownOnce   sync.Once
	waitGroup      sync.WaitGroup
	hostname       string
	listenIP       string
	nameResolver   *NameResolver
	nonRosArgs     []string
}

func newDefaultNode(name string, args []string) (*defaultNode, error) {
	node := new(defaultNode)

	namespace, nodeName, err := qualifyNodeName(name)
	if err != nil {
		return nil, err
	}

	remapping, params, specials, rest := processArguments(args)

	node.name = nodeName
	if value, ok := specials["__name"]; ok {
		node.name = value
	}

	node.namespace = namespace
	if ns := os.Getenv("ROS_NAMESPACE"); len(ns) > 0 {
		node.namespace = ns
	}
	if value, ok := specials["__ns"]; ok {
		node.namespace = value
	}

	var onlyLocalhost bool
	node.hostname, onlyLocalhost = determineHost()
	if value, ok := specials["__hostname"]; ok {
		node.hostname = value
		onlyLocalhost = (value == "localhost")
	} else if value, ok := specials["__ip"]; ok {
		node.hostname = value
		onlyLocalhost = isLoopbackIP(value)
	}
	if onlyLocalhost {
		node.listenIP = "127.0.0.1"
	} else {
		node.listenIP = "0.0.0.0"
	}

	node.masterURI = os.Getenv("ROS_MASTER_URI")
	if value, ok := specials["__master"]; ok {
		node.masterURI = value
	}
	if node.masterURI == "" {
		return nil, errors.New("ROS_MASTER_URI is not set")
	}

	if node.name == "" || !isValidName(node.name) || isPrivateName(node.name) {
		return nil, errors.Errorf("invalid node name %q", node.name)
	}
	if !isValidName(node.namespace) || isPrivateName(node.namespace) {
		return nil, errors.Errorf("invalid namespace %q", node.namespace)
	}

	node.nameResolver = newNameResolver(node.namespace, node.name, remapping)
	node.qualifiedName = node.nameResolver.qualifiedName
	node.nonRosArgs = rest
	node.servers = make(map[string]*defaultServiceServer)
	node.jobChan = make(chan func(), 100)
	node.done = make(chan struct{})

	logger := NewDefaultLogger()
	if value, ok := specials["__log_level"]; ok {
		setLogLevel(logger, value)
	}
	node.logger = logger.WithField("node", node.qualifiedName)
	node.logger.Debugf("Master URI = %s", node.masterURI)

	// Set parameters set by arguments
	for k, v := range params {
		value, err := loadParamFromString(v)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", k)
		}
		if err := node.SetParam(PrivateNS+k, value); err != nil {
			return nil, errors.Wrapf(err, "setting parameter %s", k)
		}
	}

	listener, port, err := listenTCP(node.listenIP)
	if err != nil {
		return nil, errors.Wrap(err, "slave API listener")
	}
	node.xmlrpcURI = fmt.Sprintf("http://%s:%s", node.hostname, port)
	node.logger.Debugf("listen on http://%s", listener.Addr().String())
	node.xmlrpcListener = listener
	m := map[string]xmlrpc.Method{
		"getBusStats":      func(callerID string) (interface{}, error) { return node.getBusStats(callerID) },
		"getBusInfo":       func(callerID string) (interface{}, error) { return node.getBusInfo(callerID) },
		"getMasterUri":     func(callerID string) (interface{}, error) { return node.getMasterURI(callerID) },
		"shutdown":         func(callerID string, msg string) (interface{}, error) { return node.shutdown(callerID, msg) },
		"getPid":           func(callerID string) (interface{}, error) { return node.getPid(callerID) },
		"getSubscriptions": func(callerID string) (interface{}, error) { return node.getSubscriptions(callerID) },
		"getPublications":  func(callerID string) (interface{}, error) { return node.getPublications(callerID) },
		"paramUpdate": func(callerID string, key string, value interface{}) (interface{}, error) {
			return node.paramUpdate(callerID, key, value)
		},
	}
	node.xmlrpcHandler = xmlrpc.NewHandler(m)
	node.xmlrpcServer = &http.Server{Handler: node.xmlrpcHandler}
	go node.xmlrpcServer.Serve(node.xmlrpcListener)

	// Install signal handler
	node.interruptChan = make(chan os.Signal, 1)
	signal.Notify(node.interruptChan, os.Interrupt)
	go func() {
		select {
		case <-node.interruptChan:
			node.logger.Info("Interrupted")
			node.stop()
		case <-node.done:
		}
	}()

	node.logger.Debugf("Started %s", node.qualifiedName)
	return node, nil
}

// stop marks the node as no longer OK and releases everything blocked on it.
func (node *defaultNode) stop() {
	node.stopOnce.Do(func() { close(node.done) })
}

func (node *defaultNode) OK() bool {
	select {
	case <-node.done:
		return false
	default:
		return true
	}
}

func (node *defaultNode) Name() string {
	return node.qualifiedName
}

func (node *defaultNode) getBusStats(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusError, "Not implemented", 0), nil
}

func (node *defaultNode) getBusInfo(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusError, "Not implemented", 0), nil
}

func (node *defaultNode) getMasterURI(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "Success", node.masterURI), nil
}

func (node *defaultNode) shutdown(callerID string, msg string) (interface{}, error) {
	node.logger.Infof("Shutdown requested by %s: %s", callerID, msg)
	node.stop()
	return buildRosAPIResult(APIStatusSuccess, "Success", 0), nil
}

func (node *defaultNode) getPid(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "Success", os.Getpid()), nil
}

func (node *defaultNode) getSubscriptions(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "Success", []interface{}{}), nil
}

func (node *defaultNode) getPublications(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "Success", []interface{}{}), nil
}

func (node *defaultNode) paramUpdate(callerID string, key string, value interface{}) (interface{}, error) {
	return buildRosAPIResult(APIStatusError, "Not implemented", 0), nil
}

func (node *defaultNode) NewServiceClient(service string, srvType ServiceType) ServiceClient {
	name := node.nameResolver.remap(service)
	return newDefaultServiceClient(node.logger, node.qualifiedName, node.masterURI, name, srvType)
}

func (node *defaultNode) NewServiceServer(service string, srvType ServiceType, handler interface{}) (ServiceServer, error) {
	if !isValidName(service) {
		return nil, errors.Errorf("invalid service name %q", service)
	}
	name := node.nameResolver.remap(service)
	node.serversMutex.Lock()
	defer node.serversMutex.Unlock()
	if server, ok := node.servers[name]; ok {
		server.Shutdown()
	}
	server, err := newDefaultServiceServer(node, name, srvType, handler)
	if err != nil {
		return nil, err
	}
	node.servers[name] = server
	return server, nil
}

func (node *defaultNode) WaitForService(ctx context.Context, service string) error {
	name := node.nameResolver.remap(service)
	return waitForService(ctx, node.logger, node.masterURI, node.qualifiedName, name, node.done)
}

func (node *defaultNode) SpinOnce() {
	timeoutChan := time.After(10 * time.Millisecond)
	select {
	case job := <-node.jobChan:
		job()
	case <-timeoutChan:
	case <-node.done:
	}
}

func (node *defaultNode) Spin() {
	for {
		select {
		case job := <-node.jobChan:
			node.logger.Debug("Execute job")
			job()
		case <-node.done:
			return
		}
	}
}

// enqueue hands a job to the spinning goroutine. It reports false if the
// node stopped first.
func (node *defaultNode) enqueue(job func()) bool {
	select {
	case node.jobChan <- job:
		return true
	case <-node.done:
		return false
	}
}

func (node *defaultNode) Shutdown() {
	node.shutdownOnce.Do(func() {
		node.logger.Debug("Shutting node down")
		node.stop()
		signal.Stop(node.interruptChan)

		node.serversMutex.Lock()
		for name, s := range node.servers {
			s.Shutdown()
			delete(node.servers, name)
		}
		node.serversMutex.Unlock()

		node.waitGroup.Wait()
		node.xmlrpcServer.Close()
		node.xmlrpcHandler.WaitForShutdown()
		node.logger.Debug("Shutting node down completed")
	})
}

func (node *defaultNode) callMaster(method string, args ...interface{}) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), masterTimeout)
	defer cancel()
	return callRosAPI(ctx, node.masterURI, method, append([]interface{}{node.qualifiedName}, args...)...)
}

func (node *defaultNode) GetParam(key string) (interface{}, error) {
	return node.callMaster("getParam", node.nameResolver.remap(key))
}

func (node *defaultNode) SetParam(key string, value interface{}) error {
	_, err := node.callMaster("setParam", node.nameResolver.remap(key), value)
	return err
}

func (node *defaultNode) HasParam(key string) (bool, error) {
	result, err := node.callMaster("hasParam", node.nameResolver.remap(key))
	if err != nil {
		return false, err
	}
	hasParam, ok := result.(bool)
	if !ok {
		return false, errors.New("result of 'hasParam' is not a bool")
	}
	return hasParam, nil
}

func (node *defaultNode) SearchParam(key string) (string, error) {
	result, err := node.callMaster("searchParam", key)
	if err != nil {
		return "", err
	}
	foundKey, ok := result.(string)
	if !ok {
		return "", errors.New("result of 'searchParam' is not a string")
	}
	return foundKey, nil
}

func (node *defaultNode) DeleteParam(key string) error {
	_, err := node.callMaster("deleteParam", node.nameResolver.remap(key))
	return err
}

func (node *defaultNode) Logger() *logrus.Entry {
	return node.logger
}

func (node *defaultNode) NonRosArgs() []string {
	return node.nonRosArgs
}

