package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const daemonService = "jobboard.v1.DaemonService"

type DaemonServer interface {
	GetStatus(context.Context, *Empty) (*StatusResponse, error)
}

var DaemonServiceDesc = grpc.ServiceDesc{
	ServiceName: daemonService,
	HandlerType: (*DaemonServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(daemonService, "GetStatus", DaemonServer.GetStatus),
	},
	Metadata: "jobboard/v1/daemon",
}

func RegisterDaemonServer(s grpc.ServiceRegistrar, srv DaemonServer) {
	s.RegisterService(&DaemonServiceDesc, srv)
}

type DaemonClient struct {
	cc grpc.ClientConnInterface
}

func NewDaemonClient(cc grpc.ClientConnInterface) *DaemonClient {
	return &DaemonClient{cc: cc}
}

func (c *DaemonClient) GetStatus(ctx context.Context) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "/"+daemonService+"/GetStatus", &Empty{})
}
