package database

import (
	"fmt"
	"slices"
)

// TokenHistory returns the ordered list of effective events for the token.
func (w *World) TokenHistory(tokenID string) ([]TokenEvent, error) {
	if _, exists := w.Tokens[tokenID]; !exists {
		return nil, fmt.Errorf("%w: token %s", ErrNotFound, tokenID)
	}

	return slices.Clone(w.TokenEvents[tokenID]), nil
}

func (w *World) recordEvent(tokenID string, event TokenEvent) {
	w.TokenEvents[tokenID] = append(w.TokenEvents[tokenID], event)
}
