package ledger

import (
	"context"

	"github.com/bitfsorg/royaltyledger-go/store"
)

// Sequencer supplies the execution context's monotonic sequence (a logical
// clock or a block height). It stamps policy creation and sale records.
// Without one, the ledger uses the store's persistent clock.
type Sequencer interface {
	CurrentSequence(ctx context.Context) (uint64, error)
}

// SequencerFunc adapts a function to Sequencer.
type SequencerFunc func(ctx context.Context) (uint64, error)

// CurrentSequence calls f.
func (f SequencerFunc) CurrentSequence(ctx context.Context) (uint64, error) {
	return f(ctx)
}

// currentSequence stamps an entry written in tx. The store clock advances
// inside tx, so it commits or rolls back with the entry.
func (l *Ledger) currentSequence(ctx context.Context, tx store.Tx) (uint64, error) {
	if l.sequencer == nil {
		return tx.NextSequence()
	}
	return l.sequencer.CurrentSequence(ctx)
}
