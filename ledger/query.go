package ledger

import (
	"context"
	"fmt"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
	"github.com/bitfsorg/royaltyledger-go/store"
)

// Reads require no authorization and report absent values with ok == false.

// GetPolicy returns the policy of id.
func (l *Ledger) GetPolicy(id royalty.AssetID) (p *royalty.Policy, ok bool, err error) {
	err = l.store.View(func(tx store.Tx) error {
		p, ok, err = tx.Policy(id)
		return err
	})
	return p, ok, err
}

// GetSale returns sale seq of asset id.
func (l *Ledger) GetSale(id royalty.AssetID, seq uint64) (r *royalty.SaleRecord, ok bool, err error) {
	err = l.store.View(func(tx store.Tx) error {
		r, ok, err = tx.Sale(id, seq)
		return err
	})
	return r, ok, err
}

// ListSales returns every sale of id in sequence order.
func (l *Ledger) ListSales(id royalty.AssetID) (sales []*royalty.SaleRecord, err error) {
	err = l.store.View(func(tx store.Tx) error {
		sales, err = tx.Sales(id)
		return err
	})
	return sales, err
}

// LastSaleSequence returns the sequence of the latest sale of id, 0 if none.
func (l *Ledger) LastSaleSequence(id royalty.AssetID) (seq uint64, err error) {
	err = l.store.View(func(tx store.Tx) error {
		seq, err = tx.LastSequence(id)
		return err
	})
	return seq, err
}

// GetSplits returns the split table of id ordered by recipient.
func (l *Ledger) GetSplits(id royalty.AssetID) (entries []royalty.SplitEntry, err error) {
	err = l.store.View(func(tx store.Tx) error {
		entries, err = tx.Splits(id)
		return err
	})
	return entries, err
}

// GetTotalDistributed returns the royalties paid across all assets.
func (l *Ledger) GetTotalDistributed() (total uint64, err error) {
	err = l.store.View(func(tx store.Tx) error {
		total, err = tx.TotalDistributed()
		return err
	})
	return total, err
}

// IsPaused reports whether the ledger is paused.
func (l *Ledger) IsPaused() (paused bool, err error) {
	err = l.store.View(func(tx store.Tx) error {
		paused, err = tx.Paused()
		return err
	})
	return paused, err
}

// Admin returns the administrator bound at initialization.
func (l *Ledger) Admin() principal.Principal {
	return l.admin
}

// Quote is the royalty a sale would pay.
type Quote struct {
	AssetID       royalty.AssetID
	SalePrice     uint64
	RoyaltyAmount uint64
	Payouts       []royalty.Payout
	Active        bool
}

// RoyaltyInfo quotes the royalty of a sale of id at price without recording
// it. Inactive policies are quoted with Active false.
func (l *Ledger) RoyaltyInfo(_ context.Context, id royalty.AssetID, price uint64) (*Quote, bool, error) {
	if price == 0 {
		return nil, false, fmt.Errorf("%w: sale price must be positive", ErrInvalidPrice)
	}
	var q *Quote
	err := l.store.View(func(tx store.Tx) error {
		p, ok, err := tx.Policy(id)
		if err != nil || !ok {
			return err
		}
		payouts, err := l.payouts(tx, p, royalty.Compute(price, p.RoyaltyBps))
		if err != nil {
			return err
		}
		q = &Quote{
			AssetID:       id,
			SalePrice:     price,
			RoyaltyAmount: royalty.TotalPaid(payouts),
			Payouts:       payouts,
			Active:        p.IsActive,
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return q, q != nil, nil
}
