package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
)

// Transport interface represents the behavior required to talk to peers.
type Transport interface {
	RequestChain(ctx context.Context, pr peer.Peer) ([]database.Block, error)
	ProposeBlock(ctx context.Context, pr peer.Peer, block database.Block) error
}

// ChainResponse is what a node returns when asked for its chain.
type ChainResponse struct {
	Chain  []database.Block `json:"chain"`
	Length int              `json:"length"`
}

// =============================================================================

// NetSendBlockToPeers takes the new sealed block and sends it to all known
// peers. Each request gets its own timeout. A peer that rejects the block
// reconciles on its own.
func (s *State) NetSendBlockToPeers(ctx context.Context, block database.Block) error {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	var errs []error
	for _, pr := range s.RetrieveKnownPeers() {
		err := func() error {
			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			return s.transport.ProposeBlock(ctx, pr, block)
		}()

		switch {
		case err == nil:
			s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", pr.Host)
		case errors.Is(err, ErrBlockRejected):
			s.evHandler("state: NetSendBlockToPeers: peer[%s]: %s", pr.Host, err)
		default:
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrPeerUnreachable, pr.Host, err))
		}
	}

	return errors.Join(errs...)
}

// =============================================================================

const baseURL = "http://%s/v1/node"

// DefaultMaxResponseBytes caps how much of a peer response is read.
const DefaultMaxResponseBytes = 64 << 20

// HTTPTransport talks to peers over their private HTTP API.
type HTTPTransport struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPTransport constructs a transport using the specified client. A nil
// client uses the default client and a maxBytes of zero or less uses
// DefaultMaxResponseBytes.
func NewHTTPTransport(client *http.Client, maxBytes int64) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxResponseBytes
	}

	return &HTTPTransport{
		client:   client,
		maxBytes: maxBytes,
	}
}

// RequestChain asks the peer for its full chain.
func (t *HTTPTransport) RequestChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var resp ChainResponse
	if err := t.send(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Length != len(resp.Chain) {
		return nil, fmt.Errorf("peer reported length %d for %d blocks", resp.Length, len(resp.Chain))
	}

	return resp.Chain, nil
}

// ProposeBlock sends the block to the peer for acceptance.
func (t *HTTPTransport) ProposeBlock(ctx context.Context, pr peer.Peer, block database.Block) error {
	url := fmt.Sprintf("%s/block/propose", fmt.Sprintf(baseURL, pr.Host))

	return t.send(ctx, http.MethodPost, url, block, nil)
}

// send is a helper function to send an HTTP request to a node.
func (t *HTTPTransport) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// One extra byte tells a body at the limit from one past it.
	respBody := io.LimitReader(resp.Body, t.maxBytes+1)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil
	case http.StatusNotAcceptable:
		msg, _ := io.ReadAll(respBody)
		return fmt.Errorf("%w: %s", ErrBlockRejected, bytes.TrimSpace(msg))
	default:
		msg, err := io.ReadAll(respBody)
		if err != nil {
			return err
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if dataRecv == nil {
		return nil
	}

	data, err := io.ReadAll(respBody)
	if err != nil {
		return err
	}

	if int64(len(data)) > t.maxBytes {
		return fmt.Errorf("%w: response exceeds %d bytes", ErrResponseTooLarge, t.maxBytes)
	}

	return json.Unmarshal(data, dataRecv)
}
