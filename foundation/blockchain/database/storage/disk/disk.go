// Package disk implements the chain storage as a single JSON document on disk.
package disk

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// the chain in one file per node. This implements the database.Storage
// interface.
type Disk struct {
	path string
}

// New constructs a Disk value for use. The folder is created if needed.
func New(path string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	return &Disk{path: path}, nil
}

// Path returns the location of the chain file.
func (d *Disk) Path() string {
	return d.path
}

// Close in this implementation has nothing to do since the file is
// opened and closed on every write.
func (d *Disk) Close() error {
	return nil
}

// Load reads the full chain from disk. A missing file is an empty chain.
func (d *Disk) Load() ([]database.Block, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var blocks []database.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

// Replace writes the full chain to a temporary file and renames it over the
// chain file so a reader never sees a partial chain.
func (d *Disk) Replace(blocks []database.Block) error {

	// Marshal the chain for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, d.path); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}
