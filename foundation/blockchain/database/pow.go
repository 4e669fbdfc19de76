package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Seal searches for the proof that solves the puzzle seeded by the last
// proof. The search starts at zero and stops when the context is done.
func Seal(ctx context.Context, lastProof uint64, difficulty uint16) (uint64, error) {
	for proof := uint64(0); ; proof++ {
		if proof%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		if VerifyProof(lastProof, proof, difficulty) {
			return proof, nil
		}
	}
}

// VerifyProof reports whether the hash of the concatenated decimal proofs
// starts with the number of zeros the difficulty calls for.
func VerifyProof(lastProof uint64, proof uint64, difficulty uint16) bool {
	return isHashSolved(difficulty, ProofHash(lastProof, proof))
}

// ProofHash returns the hex encoded sha256 of the two proofs written as
// decimal numbers one after the other.
func ProofHash(lastProof uint64, proof uint64) string {
	guess := strconv.FormatUint(lastProof, 10) + strconv.FormatUint(proof, 10)
	sum := sha256.Sum256([]byte(guess))
	return hex.EncodeToString(sum[:])
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint16, hash string) bool {
	if int(difficulty) > len(hash) {
		return false
	}

	return strings.HasPrefix(hash, strings.Repeat("0", int(difficulty)))
}
