package store

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
)

type saleKey struct {
	asset royalty.AssetID
	seq   uint64
}

// memState is one immutable generation of MemStore contents.
// Write transactions work on a clone and swap it in on commit.
type memState struct {
	policies  map[royalty.AssetID]*royalty.Policy
	splits    map[royalty.AssetID][]royalty.SplitEntry
	sales     map[saleKey]*royalty.SaleRecord
	sequences map[royalty.AssetID]uint64
	total     uint64
	clock     uint64
	paused    bool
	admin     principal.Principal
	hasAdmin  bool
}

func newMemState() *memState {
	return &memState{
		policies:  make(map[royalty.AssetID]*royalty.Policy),
		splits:    make(map[royalty.AssetID][]royalty.SplitEntry),
		sales:     make(map[saleKey]*royalty.SaleRecord),
		sequences: make(map[royalty.AssetID]uint64),
	}
}

// clone copies the maps. Stored values are never mutated in place, so
// sharing them between generations is safe.
func (s *memState) clone() *memState {
	c := *s
	c.policies = maps.Clone(s.policies)
	c.splits = maps.Clone(s.splits)
	c.sales = maps.Clone(s.sales)
	c.sequences = maps.Clone(s.sequences)
	return &c
}

// MemStore is an in-memory Store for tests and ephemeral ledgers.
type MemStore struct {
	mu     sync.RWMutex
	state  *memState
	closed bool
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{state: newMemState()}
}

// View runs fn against the current state.
func (s *MemStore) View(fn func(Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(&memTx{state: s.state})
}

// Update runs fn against a private copy and publishes it if fn succeeds.
func (s *MemStore) Update(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	tx := &memTx{state: s.state.clone(), writable: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// Close marks the store closed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type memTx struct {
	state    *memState
	writable bool
}

func (t *memTx) checkWritable() error {
	if !t.writable {
		return ErrReadOnly
	}
	return nil
}

func (t *memTx) Policy(id royalty.AssetID) (*royalty.Policy, bool, error) {
	p, ok := t.state.policies[id]
	if !ok {
		return nil, false, nil
	}
	return clonePolicy(p), true, nil
}

func (t *memTx) PutPolicy(p *royalty.Policy) error {
	if p == nil {
		return fmt.Errorf("%w: policy", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.state.policies[p.AssetID] = clonePolicy(p)
	return nil
}

func (t *memTx) Splits(id royalty.AssetID) ([]royalty.SplitEntry, error) {
	entries := t.state.splits[id]
	if len(entries) == 0 {
		return nil, nil
	}
	return slices.Clone(entries), nil
}

func (t *memTx) ReplaceSplits(id royalty.AssetID, entries []royalty.SplitEntry) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if len(entries) == 0 {
		delete(t.state.splits, id)
		return nil
	}
	// Keyed by recipient: a repeated recipient keeps its last share.
	byRecipient := make(map[principal.Principal]uint32, len(entries))
	for _, e := range entries {
		byRecipient[e.Recipient] = e.SplitBps
	}
	sorted := make([]royalty.SplitEntry, 0, len(byRecipient))
	for r, bps := range byRecipient {
		sorted = append(sorted, royalty.SplitEntry{Recipient: r, SplitBps: bps})
	}
	slices.SortFunc(sorted, func(a, b royalty.SplitEntry) int {
		return strings.Compare(string(a.Recipient), string(b.Recipient))
	})
	t.state.splits[id] = sorted
	return nil
}

func (t *memTx) Sale(id royalty.AssetID, seq uint64) (*royalty.SaleRecord, bool, error) {
	r, ok := t.state.sales[saleKey{id, seq}]
	if !ok {
		return nil, false, nil
	}
	return cloneSale(r), true, nil
}

func (t *memTx) PutSale(r *royalty.SaleRecord) error {
	if r == nil {
		return fmt.Errorf("%w: sale record", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	k := saleKey{r.AssetID, r.Sequence}
	if _, exists := t.state.sales[k]; exists {
		return fmt.Errorf("%w: asset %d sequence %d", ErrDuplicateSale, r.AssetID, r.Sequence)
	}
	t.state.sales[k] = cloneSale(r)
	return nil
}

func (t *memTx) Sales(id royalty.AssetID) ([]*royalty.SaleRecord, error) {
	var out []*royalty.SaleRecord
	for k, r := range t.state.sales {
		if k.asset == id {
			out = append(out, cloneSale(r))
		}
	}
	slices.SortFunc(out, func(a, b *royalty.SaleRecord) int {
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	return out, nil
}

func (t *memTx) LastSequence(id royalty.AssetID) (uint64, error) {
	return t.state.sequences[id], nil
}

func (t *memTx) SetLastSequence(id royalty.AssetID, seq uint64) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.state.sequences[id] = seq
	return nil
}

func (t *memTx) NextSequence() (uint64, error) {
	if err := t.checkWritable(); err != nil {
		return 0, err
	}
	t.state.clock++
	return t.state.clock, nil
}

func (t *memTx) TotalDistributed() (uint64, error) {
	return t.state.total, nil
}

func (t *memTx) SetTotalDistributed(total uint64) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.state.total = total
	return nil
}

func (t *memTx) Paused() (bool, error) {
	return t.state.paused, nil
}

func (t *memTx) SetPaused(paused bool) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.state.paused = paused
	return nil
}

func (t *memTx) Admin() (principal.Principal, bool, error) {
	return t.state.admin, t.state.hasAdmin, nil
}

func (t *memTx) SetAdmin(admin principal.Principal) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.state.admin = admin
	t.state.hasAdmin = true
	return nil
}
