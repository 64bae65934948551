package network

import (
	"context"
	"fmt"
)

// HeightSequencer reports the chain tip height as the ledger's current
// sequence, so policy creation and sale timestamps are block heights.
type HeightSequencer struct {
	Chain BlockchainService
}

// CurrentSequence returns the best block height.
func (s HeightSequencer) CurrentSequence(ctx context.Context) (uint64, error) {
	h, err := s.Chain.GetBestBlockHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("network: chain height: %w", err)
	}
	return h, nil
}
