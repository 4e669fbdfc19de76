package peergrpc

// Blocks travel as their JSON document since that is the form the block
// hash is computed over.

// GetChainRequest is the (empty) request for PeerService.GetChain.
type GetChainRequest struct{}

// GetChainResponse carries the full chain of the peer.
type GetChainResponse struct {
	Chain  []byte `cramberry:"1"`
	Length uint64 `cramberry:"2"`
}

// ProposeBlockRequest carries a newly sealed block.
type ProposeBlockRequest struct {
	Block []byte `cramberry:"1"`
}

// ProposeBlockResponse reports whether the peer accepted the block.
type ProposeBlockResponse struct {
	Accepted bool   `cramberry:"1"`
	Reason   string `cramberry:"2"`
}
