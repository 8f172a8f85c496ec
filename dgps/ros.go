package dgps

import (
	"context"

	"github.com/edwinhayes/poslv/msgs/poslv"
	"github.com/edwinhayes/poslv/ros"
)

// rosBus finds the mode service on a ROS graph.
type rosBus struct {
	node ros.Node
}

// NewROSBus returns a Bus backed by node.
func NewROSBus(node ros.Node) Bus {
	return &rosBus{node: node}
}

func (b *rosBus) AwaitServiceReady(ctx context.Context, name string) (ModeService, error) {
	if err := b.node.WaitForService(ctx, name); err != nil {
		return nil, err
	}
	return &rosModeService{client: b.node.NewServiceClient(name, poslv.SrvSetDGPS)}, nil
}

type rosModeService struct {
	client ros.ServiceClient
}

func (s *rosModeService) Invoke(ctx context.Context, req Request) (Response, error) {
	var srv poslv.SetDGPS
	srv.Request.Mode = req.Mode
	if err := s.client.Call(ctx, &srv); err != nil {
		return Response{}, err
	}
	return Response{Success: srv.Response.Response, Message: srv.Response.Message}, nil
}
