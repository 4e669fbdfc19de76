package peergrpc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
	"github.com/ardanlabs/landledger/foundation/blockchain/peergrpc"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_PeerService(t *testing.T) {
	t.Log("Given the need to talk to peers over gRPC.")
	{
		_, addr, err := database.GenerateKey()
		if err != nil {
			t.Fatalf("generating key: %v", err)
		}

		gen := genesis.New(addr, addr)
		gen.Date = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		gen.Difficulty = 2

		sealer := newState(t, gen, addr)
		receiver := newState(t, gen, addr)

		lis, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}

		gs, _ := peergrpc.NewServer(receiver).Serve(lis)
		defer gs.GracefulStop()

		transport := peergrpc.NewTransport()
		defer transport.Close()

		pr := peer.New(lis.Addr().String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		testID := 0
		t.Logf("\tTest %d:\tWhen requesting the chain of a peer.", testID)
		{
			chain, err := transport.RequestChain(ctx, pr)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to request the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to request the chain.", success, testID)

			if len(chain) != 1 || chain[0].Hash() != database.GenesisBlock(gen).Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould get the genesis block: got %d blocks", failed, testID, len(chain))
			}
			t.Logf("\t%s\tTest %d:\tShould get the genesis block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen proposing a block to a peer.", testID)
		{
			if _, err := sealer.RequestFaucet(addr); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould admit the faucet: %v", failed, testID, err)
			}

			block, err := sealer.SealBlock(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to seal: %v", failed, testID, err)
			}

			if err := transport.ProposeBlock(ctx, pr, block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould have the block accepted: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have the block accepted.", success, testID)

			if receiver.RetrieveLatestBlock().Hash() != block.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould extend the peer chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould extend the peer chain.", success, testID)

			if err := transport.ProposeBlock(ctx, pr, block); !errors.Is(err, state.ErrBlockRejected) {
				t.Fatalf("\t%s\tTest %d:\tShould have a repeated block rejected: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have a repeated block rejected.", success, testID)
		}
	}
}

func newState(t *testing.T, gen genesis.Genesis, beneficiary string) *state.State {
	st, err := state.New(state.Config{
		BeneficiaryID: beneficiary,
		Host:          "local:9080",
		Genesis:       gen,
		Storage:       memory.New(),
	})
	if err != nil {
		t.Fatalf("starting node: %v", err)
	}

	return st
}
