package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
	"github.com/bitfsorg/royaltyledger-go/store"
)

// RegisterPolicy creates the royalty policy of an asset. The policy starts
// active and is stamped with the current sequence.
func (l *Ledger) RegisterPolicy(ctx context.Context, id royalty.AssetID, creator principal.Principal, bps uint32) (*royalty.Policy, error) {
	var created *royalty.Policy
	err := l.store.Update(func(tx store.Tx) error {
		if err := requireActive(tx); err != nil {
			return err
		}
		if !royalty.IsValidRoyaltyBps(bps) {
			return fmt.Errorf("%w: %v", ErrInvalidPercentage, royalty.ValidateRoyaltyBps(bps))
		}
		if !l.validator.IsWellFormed(creator) {
			return fmt.Errorf("%w: creator %q", ErrInvalidRecipient, creator)
		}
		_, exists, err := tx.Policy(id)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: asset %d", ErrAlreadyExists, id)
		}
		seq, err := l.currentSequence(ctx, tx)
		if err != nil {
			return fmt.Errorf("ledger: current sequence: %w", err)
		}
		created = &royalty.Policy{
			AssetID:    id,
			Creator:    creator,
			RoyaltyBps: bps,
			IsActive:   true,
			CreatedAt:  seq,
		}
		return tx.PutPolicy(created)
	})
	if err != nil {
		return nil, l.reject("register_policy", err, zap.Uint64("asset", uint64(id)))
	}
	l.log.Info("policy registered",
		zap.Uint64("asset", uint64(id)),
		zap.Stringer("creator", creator),
		zap.Uint32("bps", bps))
	return created, nil
}

// UpdatePercentage changes the royalty rate of an asset. Only the creator
// may call it. Recorded sales are not touched.
func (l *Ledger) UpdatePercentage(_ context.Context, caller principal.Principal, id royalty.AssetID, bps uint32) error {
	var old uint32
	err := l.store.Update(func(tx store.Tx) error {
		p, err := creatorPolicy(tx, caller, id)
		if err != nil {
			return err
		}
		if !royalty.IsValidRoyaltyBps(bps) {
			return fmt.Errorf("%w: %v", ErrInvalidPercentage, royalty.ValidateRoyaltyBps(bps))
		}
		old = p.RoyaltyBps
		p.RoyaltyBps = bps
		return tx.PutPolicy(p)
	})
	if err != nil {
		return l.reject("update_percentage", err, zap.Uint64("asset", uint64(id)))
	}
	l.log.Info("royalty percentage updated",
		zap.Uint64("asset", uint64(id)),
		zap.Uint32("old_bps", old),
		zap.Uint32("bps", bps))
	return nil
}

// Deactivate permanently disables sales of an asset. Only the creator may
// call it; deactivating an inactive policy is a no-op.
func (l *Ledger) Deactivate(_ context.Context, caller principal.Principal, id royalty.AssetID) error {
	err := l.store.Update(func(tx store.Tx) error {
		p, err := creatorPolicy(tx, caller, id)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return nil
		}
		p.IsActive = false
		return tx.PutPolicy(p)
	})
	if err != nil {
		return l.reject("deactivate", err, zap.Uint64("asset", uint64(id)))
	}
	l.log.Info("policy deactivated", zap.Uint64("asset", uint64(id)))
	return nil
}

// ConfigureSplits replaces the split table of an asset. Only the creator
// may call it. An empty set clears the table.
func (l *Ledger) ConfigureSplits(_ context.Context, caller principal.Principal, id royalty.AssetID, entries []royalty.SplitEntry) error {
	err := l.store.Update(func(tx store.Tx) error {
		if _, err := creatorPolicy(tx, caller, id); err != nil {
			return err
		}
		if err := royalty.ValidateSplitSet(entries); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPercentage, err)
		}
		seen := make(map[principal.Principal]struct{}, len(entries))
		for _, e := range entries {
			if !l.validator.IsWellFormed(e.Recipient) {
				return fmt.Errorf("%w: split recipient %q", ErrInvalidRecipient, e.Recipient)
			}
			if _, dup := seen[e.Recipient]; dup {
				return fmt.Errorf("%w: duplicate split recipient %s", ErrInvalidRecipient, e.Recipient)
			}
			seen[e.Recipient] = struct{}{}
		}
		return tx.ReplaceSplits(id, entries)
	})
	if err != nil {
		return l.reject("configure_splits", err, zap.Uint64("asset", uint64(id)))
	}
	l.log.Info("splits configured",
		zap.Uint64("asset", uint64(id)),
		zap.Int("recipients", len(entries)),
		zap.Uint64("total_bps", royalty.SplitTotal(entries)))
	return nil
}
