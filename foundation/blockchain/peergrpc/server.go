package peergrpc

import (
	"context"
	"encoding/json"
	"net"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Compile-time interface check.
var _ PeerServiceServer = (*Server)(nil)

// Server exposes the node state to peers over gRPC.
type Server struct {
	state *state.State
}

// NewServer creates a gRPC peer server for the node state.
func NewServer(st *state.State) *Server {
	return &Server{
		state: st,
	}
}

// Register adds the peer service to a gRPC server.
func (s *Server) Register(gs *grpc.Server) {
	RegisterPeerServiceServer(gs, s)
}

// Serve starts a gRPC server on the given listener. It returns the server so
// the caller can stop it.
func (s *Server) Serve(lis net.Listener, opts ...grpc.ServerOption) (*grpc.Server, <-chan error) {
	opts = append(opts, grpc.ForceServerCodec(Codec{}))
	gs := grpc.NewServer(opts...)
	s.Register(gs)

	errs := make(chan error, 1)
	go func() {
		errs <- gs.Serve(lis)
	}()

	return gs, errs
}

// GetChain returns the full chain of the node.
func (s *Server) GetChain(ctx context.Context, _ *GetChainRequest) (*GetChainResponse, error) {
	chain := s.state.RetrieveChain()

	data, err := json.Marshal(chain)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding chain: %s", err)
	}

	resp := GetChainResponse{
		Chain:  data,
		Length: uint64(len(chain)),
	}

	return &resp, nil
}

// ProposeBlock offers a sealed block to the node.
func (s *Server) ProposeBlock(ctx context.Context, req *ProposeBlockRequest) (*ProposeBlockResponse, error) {
	var block database.Block
	if err := json.Unmarshal(req.Block, &block); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding block: %s", err)
	}

	if err := s.state.ProcessProposedBlock(block); err != nil {
		return &ProposeBlockResponse{Reason: err.Error()}, nil
	}

	return &ProposeBlockResponse{Accepted: true}, nil
}
