// Package nameservice reads a folder of key files and maps each ledger
// address to the file's base name so logs and API responses can show
// friendly names.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// keyExt is the extension of the key files produced by the wallet.
const keyExt = ".ecdsa"

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	names map[string]string
}

// New walks root and registers the address of every key file found. A
// missing root yields an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		names: make(map[string]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			if fileName == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != keyExt {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		address := signature.PublicKeyToAddress(privateKey.PublicKey)
		ns.names[address] = strings.TrimSuffix(filepath.Base(fileName), keyExt)

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the address, or the address itself when it
// is unknown. The system address is always named "system".
func (ns *NameService) Lookup(address string) string {
	if address == "0" {
		return "system"
	}

	name, exists := ns.names[address]
	if !exists {
		return address
	}
	return name
}

// Copy returns a copy of the map of addresses to names.
func (ns *NameService) Copy() map[string]string {
	return maps.Clone(ns.names)
}
