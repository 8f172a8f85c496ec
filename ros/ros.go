// Package ros is a ROS1 client runtime covering what a service tool
// needs: a node with the slave XML-RPC API, master parameter access,
// TCPROS service clients and servers, and waiting for services.
package ros

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Node interface {
	NewServiceClient(service string, srvType ServiceType) ServiceClient
	// handler must be a func taking the concrete service pointer
	// produced by srvType.NewService() and returning an error. Calls
	// run on the goroutine executing Spin or SpinOnce.
	NewServiceServer(service string, srvType ServiceType, handler interface{}) (ServiceServer, error)
	// WaitForService blocks until the service is registered with the
	// master and its provider answers a probe. Without a context
	// deadline it waits until the node shuts down.
	WaitForService(ctx context.Context, service string) error

	OK() bool
	SpinOnce()
	Spin()
	Shutdown()

	GetParam(name string) (interface{}, error)
	SetParam(name string, value interface{}) error
	HasParam(name string) (bool, error)
	SearchParam(name string) (string, error)
	DeleteParam(name string) error

	Name() string
	Logger() *logrus.Entry

	NonRosArgs() []string
}

// NewNode creates a node named name. args are the process arguments;
// ROS remappings, private parameters and special keys are consumed and
// the remaining arguments are available from NonRosArgs.
func NewNode(name string, args []string) (Node, error) {
	return newDefaultNode(name, args)
}

type ServiceServer interface {
	Shutdown()
}

type ServiceClient interface {
	Call(ctx context.Context, srv Service) error
	Shutdown()
}
