package mempool_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func sign(t *testing.T, amount uint64) database.SignedTx {
	key, from, err := database.GenerateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	_, to, err := database.GenerateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	stx, err := database.NewTx(from, to, database.TransferCurrency{Amount: amount}).Sign(key)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	return stx
}

func TestCRUD(t *testing.T) {
	t.Log("Given the need to validate the mempool.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a set of transactions.", testID)
		{
			mp := mempool.New()

			txs := []database.SignedTx{sign(t, 1), sign(t, 2), sign(t, 3)}
			for i, tx := range txs {
				n, err := mp.Upsert(tx)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to add tx %d: %v", failed, testID, i, err)
				}
				if n != i+1 {
					t.Fatalf("\t%s\tTest %d:\tShould have %d txs: got %d", failed, testID, i+1, n)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add transactions.", success, testID)

			if _, err := mp.Upsert(txs[1]); !errors.Is(err, database.ErrInvalidTransaction) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a duplicate: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a duplicate.", success, testID)

			if !mp.Contains(txs[2].Transaction) {
				t.Fatalf("\t%s\tTest %d:\tShould find a pending transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould find a pending transaction.", success, testID)

			if n := mp.Delete(txs[1], sign(t, 9)); n != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould remove only the pending transaction: got %d", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould remove only the pending transaction.", success, testID)

			picked := mp.PickAll()
			if len(picked) != 2 || picked[0].Transaction.Key() != txs[0].Transaction.Key() || picked[1].Transaction.Key() != txs[2].Transaction.Key() {
				t.Fatalf("\t%s\tTest %d:\tShould keep admission order: got %d txs", failed, testID, len(picked))
			}
			t.Logf("\t%s\tTest %d:\tShould keep admission order.", success, testID)

			mp.Truncate()
			if mp.Count() != 0 || len(mp.PickAll()) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould clear the pool.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould clear the pool.", success, testID)
		}
	}
}
