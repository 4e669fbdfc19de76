package state

import (
	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveBeneficiary returns the account credited for sealing blocks.
func (s *State) RetrieveBeneficiary() string {
	return s.beneficiaryID
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveChain returns a copy of the full chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Chain()
}

// RetrieveWorld returns a copy of the current world state.
func (s *State) RetrieveWorld() *database.World {
	return s.db.World()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.SignedTx {
	return s.mempool.PickAll()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveStatus returns what this node reports about its chain.
func (s *State) RetrieveStatus() peer.Status {
	latest := s.db.LatestBlock()

	return peer.Status{
		Length:          s.db.Length(),
		LatestBlockHash: latest.Hash(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}
