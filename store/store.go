// Package store persists the royalty ledger's policy store, split table,
// sale ledger and global state.
//
// All access goes through transactions. Update runs its function in a
// single serialized write transaction and commits only if the function
// returns nil, so a failing ledger operation leaves no trace.
package store

import (
	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
)

// Store is a transactional ledger store.
type Store interface {
	// View runs fn in a read-only transaction.
	View(fn func(Tx) error) error

	// Update runs fn in a write transaction. Writers are serialized.
	Update(fn func(Tx) error) error

	// Close releases the store.
	Close() error
}

// Tx is the view of the ledger state inside one transaction.
// Lookups of absent values return the zero value, false and a nil error.
type Tx interface {
	// Policy returns the policy for id.
	Policy(id royalty.AssetID) (*royalty.Policy, bool, error)

	// PutPolicy inserts or overwrites a policy.
	PutPolicy(p *royalty.Policy) error

	// Splits returns the split entries of id ordered by recipient.
	Splits(id royalty.AssetID) ([]royalty.SplitEntry, error)

	// ReplaceSplits replaces the whole split set of id.
	ReplaceSplits(id royalty.AssetID, entries []royalty.SplitEntry) error

	// Sale returns the sale record at (id, seq).
	Sale(id royalty.AssetID, seq uint64) (*royalty.SaleRecord, bool, error)

	// PutSale appends a sale record. Returns ErrDuplicateSale if one exists.
	PutSale(r *royalty.SaleRecord) error

	// Sales returns every sale of id in sequence order.
	Sales(id royalty.AssetID) ([]*royalty.SaleRecord, error)

	// LastSequence returns the last sale sequence of id, 0 if none.
	LastSequence(id royalty.AssetID) (uint64, error)

	// SetLastSequence stores the last sale sequence of id.
	SetLastSequence(id royalty.AssetID, seq uint64) error

	// TotalDistributed returns the cumulative royalties paid out.
	TotalDistributed() (uint64, error)

	// SetTotalDistributed stores the cumulative royalties paid out.
	SetTotalDistributed(total uint64) error

	// NextSequence advances and returns the ledger's persistent logical
	// clock. The first call on an empty store returns 1.
	NextSequence() (uint64, error)

	// Paused returns the global pause flag.
	Paused() (bool, error)

	// SetPaused stores the global pause flag.
	SetPaused(paused bool) error

	// Admin returns the bound administrator.
	Admin() (principal.Principal, bool, error)

	// SetAdmin binds the administrator.
	SetAdmin(admin principal.Principal) error
}

func clonePolicy(p *royalty.Policy) *royalty.Policy {
	c := *p
	return &c
}

func cloneSale(r *royalty.SaleRecord) *royalty.SaleRecord {
	c := *r
	if r.Payouts != nil {
		c.Payouts = append([]royalty.Payout(nil), r.Payouts...)
	}
	return &c
}
