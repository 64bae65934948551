// Package royalty holds the royalty ledger's data model and the pure
// arithmetic over it: basis-point royalty computation, split payouts,
// parameter validation and the binary record encoding used by durable
// stores.
package royalty

import "github.com/bitfsorg/royaltyledger-go/principal"

const (
	// BasisPoints is 100% expressed in basis points.
	BasisPoints = 10000

	// MaxRoyaltyBps caps a policy's royalty at 10% of the sale price.
	MaxRoyaltyBps = 1000

	// MaxSplitRecipients bounds the number of split entries per asset.
	MaxSplitRecipients = 10
)

// AssetID identifies a tracked asset.
type AssetID uint64

// Policy is the royalty configuration of one asset.
// Creator and CreatedAt never change once the policy exists.
type Policy struct {
	AssetID    AssetID
	Creator    principal.Principal
	RoyaltyBps uint32
	IsActive   bool
	CreatedAt  uint64 // sequence at registration
}

// SplitEntry is one recipient's share of the royalty amount (not of the
// sale price).
type SplitEntry struct {
	Recipient principal.Principal
	SplitBps  uint32
}

// Payout is a single transfer made out of a sale's proceeds.
type Payout struct {
	To     principal.Principal
	Amount uint64
}

// SaleRecord is an append-only entry in the sale ledger.
type SaleRecord struct {
	AssetID       AssetID
	Sequence      uint64 // 1-based, per asset
	Seller        principal.Principal
	Buyer         principal.Principal
	SalePrice     uint64
	RoyaltyPaid   uint64
	Timestamp     uint64 // sequence at sale time
	Payouts       []Payout
	SettlementRef string // transferer reference, e.g. a txid
}

// SplitTotal returns the sum of splitBps over entries.
func SplitTotal(entries []SplitEntry) uint64 {
	var total uint64
	for _, e := range entries {
		total += uint64(e.SplitBps)
	}
	return total
}

// TotalPaid returns the sum of payout amounts.
func TotalPaid(payouts []Payout) uint64 {
	var total uint64
	for _, p := range payouts {
		total += p.Amount
	}
	return total
}
