// Package settle moves royalty payouts from a sale's proceeds holder to
// the royalty payees.
//
// A Transferer receives every payout of one sale in a single call and must
// either complete all of them or none.
package settle

import (
	"context"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
)

// Receipt describes a completed transfer.
type Receipt struct {
	Ref    string // settlement reference, e.g. a txid; empty when none exists
	Amount uint64 // total moved to payees
}

// Transferer moves payouts from the proceeds holder.
type Transferer interface {
	Transfer(ctx context.Context, from principal.Principal, payouts []royalty.Payout) (Receipt, error)
}

// FuncTransferer adapts a function to Transferer.
type FuncTransferer func(ctx context.Context, from principal.Principal, payouts []royalty.Payout) (Receipt, error)

// Transfer calls f.
func (f FuncTransferer) Transfer(ctx context.Context, from principal.Principal, payouts []royalty.Payout) (Receipt, error) {
	return f(ctx, from, payouts)
}

// Offline records payouts without moving value, for ledgers whose
// settlement happens out of band.
type Offline struct{}

// Transfer always succeeds.
func (Offline) Transfer(_ context.Context, _ principal.Principal, payouts []royalty.Payout) (Receipt, error) {
	return Receipt{Amount: royalty.TotalPaid(payouts)}, nil
}
