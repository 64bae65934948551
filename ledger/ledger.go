// Package ledger implements the royalty ledger engine: royalty policies per
// asset, an append-only sale ledger, split tables and a global pause
// switch.
//
// Every mutating operation runs in a single store write transaction. The
// royalty transfer of a sale happens inside that transaction, so a failed
// transfer leaves no trace in the store.
package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
	"github.com/bitfsorg/royaltyledger-go/settle"
	"github.com/bitfsorg/royaltyledger-go/store"
)

// Ledger is the royalty ledger engine. It is safe for concurrent use;
// writers are serialized by the store.
type Ledger struct {
	store     store.Store
	admin     principal.Principal
	transfer  settle.Transferer
	validator principal.Validator
	sequencer Sequencer
	splitMode SplitMode
	log       *zap.Logger
	metrics   *Metrics
}

// New binds an engine to s. The administrator is persisted on first use;
// reopening a store with a different administrator fails with
// ErrAdminMismatch.
func New(s store.Store, admin principal.Principal, t settle.Transferer, opts ...Option) (*Ledger, error) {
	if s == nil || t == nil {
		return nil, fmt.Errorf("ledger: %w", store.ErrNilParam)
	}
	l := &Ledger{
		store:     s,
		admin:     admin,
		transfer:  t,
		validator: principal.StandardValidator{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if !l.validator.IsWellFormed(admin) {
		return nil, fmt.Errorf("%w: administrator %q", ErrInvalidRecipient, admin)
	}

	var paused bool
	err := s.Update(func(tx store.Tx) error {
		bound, ok, err := tx.Admin()
		if err != nil {
			return err
		}
		if ok && bound != admin {
			return fmt.Errorf("%w: store is bound to %s", ErrAdminMismatch, bound)
		}
		if !ok {
			if err := tx.SetAdmin(admin); err != nil {
				return err
			}
		}
		paused, err = tx.Paused()
		return err
	})
	if err != nil {
		return nil, err
	}
	l.metrics.setPaused(paused)
	l.log.Debug("ledger opened",
		zap.Stringer("admin", admin),
		zap.Stringer("split_mode", l.splitMode),
		zap.Bool("paused", paused))
	return l, nil
}

// SplitMode returns the configured split payout behavior.
func (l *Ledger) SplitMode() SplitMode {
	return l.splitMode
}

// reject logs and counts a failed operation and returns err unchanged.
func (l *Ledger) reject(op string, err error, fields ...zap.Field) error {
	l.metrics.rejected(op, err)
	l.log.Debug("ledger operation rejected",
		append(fields, zap.String("op", op), zap.Error(err))...)
	return err
}

func (l *Ledger) isAdmin(caller principal.Principal) bool {
	return caller == l.admin
}

// requireActive fails with ErrNotAuthorized while the ledger is paused.
func requireActive(tx store.Tx) error {
	paused, err := tx.Paused()
	if err != nil {
		return err
	}
	if paused {
		return fmt.Errorf("%w: ledger is paused", ErrNotAuthorized)
	}
	return nil
}

// existingPolicy loads the policy of id or fails with ErrAssetNotFound.
func existingPolicy(tx store.Tx, id royalty.AssetID) (*royalty.Policy, error) {
	p, ok, err := tx.Policy(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: asset %d", ErrAssetNotFound, id)
	}
	return p, nil
}

// creatorPolicy runs the shared gate of creator-only operations: system
// active, policy exists, caller is the creator.
func creatorPolicy(tx store.Tx, caller principal.Principal, id royalty.AssetID) (*royalty.Policy, error) {
	if err := requireActive(tx); err != nil {
		return nil, err
	}
	p, err := existingPolicy(tx, id)
	if err != nil {
		return nil, err
	}
	if caller != p.Creator {
		return nil, fmt.Errorf("%w: %s is not the creator of asset %d", ErrNotAuthorized, caller, id)
	}
	return p, nil
}

// Pause stops every mutating operation except Resume. Only the
// administrator may pause; pausing a paused ledger is a no-op.
func (l *Ledger) Pause(_ context.Context, caller principal.Principal) error {
	return l.setPaused("pause", caller, true)
}

// Resume re-enables mutating operations. Only the administrator may resume.
func (l *Ledger) Resume(_ context.Context, caller principal.Principal) error {
	return l.setPaused("resume", caller, false)
}

func (l *Ledger) setPaused(op string, caller principal.Principal, paused bool) error {
	if !l.isAdmin(caller) {
		err := fmt.Errorf("%w: %s is not the administrator", ErrNotAuthorized, caller)
		return l.reject(op, err, zap.Stringer("caller", caller))
	}
	err := l.store.Update(func(tx store.Tx) error {
		return tx.SetPaused(paused)
	})
	if err != nil {
		return l.reject(op, err)
	}
	l.metrics.setPaused(paused)
	l.log.Info("ledger pause state changed", zap.Bool("paused", paused))
	return nil
}
