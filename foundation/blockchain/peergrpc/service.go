package peergrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

const serviceName = "ledger.v1.PeerService"

// PeerServiceServer is the server-side interface for the peer gRPC service.
type PeerServiceServer interface {
	GetChain(context.Context, *GetChainRequest) (*GetChainResponse, error)
	ProposeBlock(context.Context, *ProposeBlockRequest) (*ProposeBlockResponse, error)
}

// RegisterPeerServiceServer registers the PeerServiceServer on a gRPC server.
func RegisterPeerServiceServer(s *grpc.Server, srv PeerServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

func handlerGetChain(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetChainRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(PeerServiceServer).GetChain(ctx, req)
}

func handlerProposeBlock(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ProposeBlockRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(PeerServiceServer).ProposeBlock(ctx, req)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PeerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetChain", Handler: handlerGetChain},
		{MethodName: "ProposeBlock", Handler: handlerProposeBlock},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/peer.cram",
}

func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}
