package ledger

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
	"github.com/bitfsorg/royaltyledger-go/store"
)

// SaleResult is returned by RecordSale.
type SaleResult struct {
	Sequence      uint64
	RoyaltyPaid   uint64
	Payouts       []royalty.Payout
	SettlementRef string
}

// RecordSale appends a sale to the asset's ledger and pays its royalty
// from the seller. A failed transfer aborts the sale with ErrTransferFailed
// and leaves the store unchanged.
func (l *Ledger) RecordSale(ctx context.Context, id royalty.AssetID, seller, buyer principal.Principal, price uint64) (*SaleResult, error) {
	var res *SaleResult
	err := l.store.Update(func(tx store.Tx) error {
		if err := requireActive(tx); err != nil {
			return err
		}
		if price == 0 {
			return fmt.Errorf("%w: sale price must be positive", ErrInvalidPrice)
		}
		p, err := existingPolicy(tx, id)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return fmt.Errorf("%w: policy of asset %d is inactive", ErrNotAuthorized, id)
		}

		last, err := tx.LastSequence(id)
		if err != nil {
			return err
		}
		seq := last + 1

		payouts, err := l.payouts(tx, p, royalty.Compute(price, p.RoyaltyBps))
		if err != nil {
			return err
		}
		paid := royalty.TotalPaid(payouts)

		total, err := tx.TotalDistributed()
		if err != nil {
			return err
		}
		if paid > math.MaxUint64-total {
			return fmt.Errorf("%w: %d + %d", ErrTotalOverflow, total, paid)
		}

		ts, err := l.currentSequence(ctx, tx)
		if err != nil {
			return fmt.Errorf("ledger: current sequence: %w", err)
		}

		rec := &royalty.SaleRecord{
			AssetID:     id,
			Sequence:    seq,
			Seller:      seller,
			Buyer:       buyer,
			SalePrice:   price,
			RoyaltyPaid: paid,
			Timestamp:   ts,
			Payouts:     payouts,
		}
		if paid > 0 {
			receipt, err := l.transfer.Transfer(ctx, seller, payouts)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrTransferFailed, err)
			}
			rec.SettlementRef = receipt.Ref
		}

		if err := tx.PutSale(rec); err != nil {
			return err
		}
		if err := tx.SetLastSequence(id, seq); err != nil {
			return err
		}
		if err := tx.SetTotalDistributed(total + paid); err != nil {
			return err
		}
		res = &SaleResult{
			Sequence:      seq,
			RoyaltyPaid:   paid,
			Payouts:       payouts,
			SettlementRef: rec.SettlementRef,
		}
		return nil
	})
	if err != nil {
		return nil, l.reject("record_sale", err,
			zap.Uint64("asset", uint64(id)),
			zap.Uint64("price", price))
	}
	l.metrics.saleRecorded(res.RoyaltyPaid)
	l.log.Info("sale recorded",
		zap.Uint64("asset", uint64(id)),
		zap.Uint64("sequence", res.Sequence),
		zap.Uint64("price", price),
		zap.Uint64("royalty", res.RoyaltyPaid),
		zap.String("settlement", res.SettlementRef))
	return res, nil
}

// payouts splits royaltyAmount according to the split mode.
func (l *Ledger) payouts(tx store.Tx, p *royalty.Policy, royaltyAmount uint64) ([]royalty.Payout, error) {
	if l.splitMode != SplitDistribute {
		if royaltyAmount == 0 {
			return nil, nil
		}
		return []royalty.Payout{{To: p.Creator, Amount: royaltyAmount}}, nil
	}
	entries, err := tx.Splits(p.AssetID)
	if err != nil {
		return nil, err
	}
	return royalty.SplitPayouts(royaltyAmount, p.Creator, entries), nil
}
