package database

import "fmt"

// Admit runs the checks a transaction must pass before it can wait in the
// mempool. The signature is verified first, then the same rules replay uses
// are evaluated against the block that would carry the transaction.
func (w *World) Admit(at Position, stx SignedTx) error {
	if err := stx.Validate(); err != nil {
		return err
	}

	if err := w.Check(at, stx.Transaction); err != nil {
		return fmt.Errorf("admit %s: %w", stx.Transaction.Data.Type, err)
	}

	return nil
}
