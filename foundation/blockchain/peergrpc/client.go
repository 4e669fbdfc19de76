package peergrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Compile-time interface check.
var _ state.Transport = (*Transport)(nil)

// Transport implements state.Transport over gRPC. A connection is opened the
// first time a peer is used and kept for later requests.
type Transport struct {
	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
	opts  []grpc.DialOption
}

// NewTransport constructs a gRPC transport. Without options the connections
// are made without transport security.
func NewTransport(opts ...grpc.DialOption) *Transport {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})))

	return &Transport{
		conns: make(map[string]*grpc.ClientConn),
		opts:  opts,
	}
}

// Close closes every open connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var first error
	for host, cc := range t.conns {
		if err := cc.Close(); err != nil && first == nil {
			first = err
		}
		delete(t.conns, host)
	}

	return first
}

// RequestChain asks the peer for its full chain.
func (t *Transport) RequestChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	cc, err := t.conn(pr.Host)
	if err != nil {
		return nil, err
	}

	resp := new(GetChainResponse)
	if err := cc.Invoke(ctx, fullMethod("GetChain"), &GetChainRequest{}, resp); err != nil {
		return nil, err
	}

	var chain []database.Block
	if err := json.Unmarshal(resp.Chain, &chain); err != nil {
		return nil, fmt.Errorf("decoding chain: %w", err)
	}

	if resp.Length != uint64(len(chain)) {
		return nil, fmt.Errorf("peer reported length %d for %d blocks", resp.Length, len(chain))
	}

	return chain, nil
}

// ProposeBlock sends the block to the peer for acceptance.
func (t *Transport) ProposeBlock(ctx context.Context, pr peer.Peer, block database.Block) error {
	cc, err := t.conn(pr.Host)
	if err != nil {
		return err
	}

	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	resp := new(ProposeBlockResponse)
	if err := cc.Invoke(ctx, fullMethod("ProposeBlock"), &ProposeBlockRequest{Block: data}, resp); err != nil {
		return err
	}

	if !resp.Accepted {
		return fmt.Errorf("%w: %s", state.ErrBlockRejected, resp.Reason)
	}

	return nil
}

// conn returns the connection for the host, creating it if needed.
func (t *Transport) conn(host string) (*grpc.ClientConn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cc, exists := t.conns[host]; exists {
		return cc, nil
	}

	cc, err := grpc.NewClient(host, t.opts...)
	if err != nil {
		return nil, fmt.Errorf("peer client: %s: %w", host, err)
	}
	t.conns[host] = cc

	return cc, nil
}
