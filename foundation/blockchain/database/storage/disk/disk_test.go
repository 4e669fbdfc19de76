package disk_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Disk(t *testing.T) {
	t.Log("Given the need to keep the chain on disk.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen writing and reading the chain.", testID)
		{
			path := filepath.Join(t.TempDir(), "data", "blocks_9080.json")

			d, err := disk.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create the storage: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to create the storage.", success, testID)

			blocks, err := d.Load()
			if err != nil || len(blocks) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould load an empty chain from a missing file: %d blocks, %v", failed, testID, len(blocks), err)
			}
			t.Logf("\t%s\tTest %d:\tShould load an empty chain from a missing file.", success, testID)

			_, addr, err := database.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a key: %v", failed, testID, err)
			}

			gen := genesis.New(addr, addr)
			gb := database.GenesisBlock(gen)
			b2 := database.NewBlock(gb, 7, time.Unix(1714564800, 0), []database.SignedTx{database.NewSystemTx(addr, database.MiningReward{})})
			chain := []database.Block{gb, b2}

			if err := d.Replace(chain); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to write the chain.", success, testID)

			got, err := d.Load()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the chain: %v", failed, testID, err)
			}

			if !reflect.DeepEqual(got, chain) {
				t.Fatalf("\t%s\tTest %d:\tShould read back the same chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould read back the same chain.", success, testID)

			if got[1].PreviousHash != got[0].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould keep the hash links.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the hash links.", success, testID)

			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil || len(entries) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould leave only the chain file: %d entries, %v", failed, testID, len(entries), err)
			}
			t.Logf("\t%s\tTest %d:\tShould leave only the chain file.", success, testID)
		}
	}
}
