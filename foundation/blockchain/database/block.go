package database

import (
	"fmt"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
)

// Genesis block constants every chain starts with.
const (
	GenesisIndex uint64 = 1
	GenesisProof uint64 = 100
)

// Block represents a group of transactions sealed by a proof of work. Fields
// are declared in key-sorted order since the JSON form is what gets hashed.
type Block struct {
	Index        uint64     `json:"index"`         // Position in the chain starting at 1.
	PreviousHash string     `json:"previous_hash"` // Hash of the previous block.
	Proof        uint64     `json:"proof"`         // Solution to the puzzle seeded by the previous proof.
	Timestamp    float64    `json:"timestamp"`     // Unix time in seconds the block was sealed.
	Transactions []SignedTx `json:"transactions"`  // Transactions in application order.
}

// GenesisBlock constructs the first block of the chain. The timestamp comes
// from the genesis date so every node sharing a genesis file starts from the
// same block.
func GenesisBlock(gen genesis.Genesis) Block {
	return Block{
		Index:        GenesisIndex,
		PreviousHash: signature.ZeroHash,
		Proof:        GenesisProof,
		Timestamp:    Timestamp(gen.Date),
		Transactions: []SignedTx{},
	}
}

// NewBlock constructs the block that follows the previous block.
func NewBlock(prev Block, proof uint64, now time.Time, txs []SignedTx) Block {
	if txs == nil {
		txs = []SignedTx{}
	}

	return Block{
		Index:        prev.Index + 1,
		PreviousHash: prev.Hash(),
		Proof:        proof,
		Timestamp:    Timestamp(now),
		Transactions: txs,
	}
}

// Hash returns the unique hash for the block.
func (b Block) Hash() string {

	// A nil list and an empty list must hash the same.
	if b.Transactions == nil {
		b.Transactions = []SignedTx{}
	}

	return signature.Hash(b)
}

// Time returns the block timestamp as a time value.
func (b Block) Time() time.Time {
	sec := int64(b.Timestamp)
	nsec := int64((b.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// ValidateGenesis checks the block holds the genesis invariants.
func (b Block) ValidateGenesis() error {
	if b.Index != GenesisIndex {
		return fmt.Errorf("%w: genesis index is %d, expected %d", ErrInvalidChain, b.Index, GenesisIndex)
	}

	if b.PreviousHash != signature.ZeroHash {
		return fmt.Errorf("%w: genesis previous hash is %s", ErrInvalidChain, b.PreviousHash)
	}

	if b.Proof != GenesisProof {
		return fmt.Errorf("%w: genesis proof is %d, expected %d", ErrInvalidChain, b.Proof, GenesisProof)
	}

	return nil
}

// ValidateNext checks the block links to the previous block and carries a
// valid proof of work.
func (b Block) ValidateNext(prev Block, difficulty uint16) error {
	if b.Index != prev.Index+1 {
		return fmt.Errorf("%w: block %d does not follow block %d", ErrInvalidChain, b.Index, prev.Index)
	}

	if hash := prev.Hash(); b.PreviousHash != hash {
		return fmt.Errorf("%w: block %d previous hash %s does not match %s", ErrInvalidChain, b.Index, b.PreviousHash, hash)
	}

	if !VerifyProof(prev.Proof, b.Proof, difficulty) {
		return fmt.Errorf("%w: block %d proof %d is not solved", ErrInvalidChain, b.Index, b.Proof)
	}

	return nil
}

// Timestamp converts a time value into the block timestamp format.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
