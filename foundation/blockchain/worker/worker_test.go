package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
	"github.com/ardanlabs/landledger/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_AutoSeal(t *testing.T) {
	t.Log("Given the need to seal admitted transactions in the background.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a faucet request is admitted.", testID)
		{
			_, gov, err := database.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a key: %v", failed, testID, err)
			}

			gen := genesis.New(gov, gov)
			gen.Difficulty = 2

			st, err := state.New(state.Config{
				BeneficiaryID: gov,
				Host:          "local:9080",
				Genesis:       gen,
				Storage:       memory.New(),
				KnownPeers:    peer.NewPeerSet("peer:9080"),
				Transport:     unreachable{},
				PeerTimeout:   time.Second,
				AutoSeal:      true,
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to start the node: %v", failed, testID, err)
			}

			w := worker.Run(st, time.Hour, func(v string, args ...any) {})
			defer w.Shutdown()

			if _, err := st.RequestFaucet(gov); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould admit the faucet: %v", failed, testID, err)
			}

			deadline := time.Now().Add(10 * time.Second)
			for st.RetrieveLatestBlock().Index < 2 {
				if time.Now().After(deadline) {
					t.Fatalf("\t%s\tTest %d:\tShould seal a block in the background.", failed, testID)
				}
				time.Sleep(10 * time.Millisecond)
			}
			t.Logf("\t%s\tTest %d:\tShould seal a block in the background.", success, testID)

			if bal := st.QueryBalances(gov)[gov]; bal != gen.FaucetReward+gen.MiningReward {
				t.Fatalf("\t%s\tTest %d:\tShould credit the faucet and the reward: got %d", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould credit the faucet and the reward.", success, testID)
		}
	}
}

type unreachable struct{}

func (unreachable) RequestChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	return nil, errors.New("connection refused")
}

func (unreachable) ProposeBlock(ctx context.Context, pr peer.Peer, block database.Block) error {
	return errors.New("connection refused")
}
