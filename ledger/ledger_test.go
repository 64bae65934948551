package ledger

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
	"github.com/bitfsorg/royaltyledger-go/settle"
	"github.com/bitfsorg/royaltyledger-go/store"
)

const (
	admin   principal.Principal = "admin@example.com"
	creator principal.Principal = "creator@example.com"
	seller  principal.Principal = "seller@example.com"
	buyer   principal.Principal = "buyer@example.com"
	alice   principal.Principal = "alice@example.com"
	bob     principal.Principal = "bob@example.com"
	mallory principal.Principal = "mallory@example.com"
)

var ctx = context.Background()

// transferCall is one recorded Transfer invocation.
type transferCall struct {
	from    principal.Principal
	payouts []royalty.Payout
}

// recorder is a Transferer that records calls and optionally fails.
type recorder struct {
	mu    sync.Mutex
	calls []transferCall
	fail  error
}

func (r *recorder) Transfer(_ context.Context, from principal.Principal, payouts []royalty.Payout) (settle.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return settle.Receipt{}, r.fail
	}
	r.calls = append(r.calls, transferCall{from: from, payouts: payouts})
	return settle.Receipt{Ref: "tx-ref", Amount: royalty.TotalPaid(payouts)}, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newLedger(t *testing.T, s store.Store, opts ...Option) (*Ledger, *recorder) {
	t.Helper()
	rec := &recorder{}
	l, err := New(s, admin, rec, opts...)
	require.NoError(t, err)
	return l, rec
}

func tempBoltStore(t *testing.T) *store.BoltStore {
	t.Helper()
	s, err := store.OpenBoltStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// forEachStore runs fn with an engine over every store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, l *Ledger, rec *recorder), opts ...Option) {
	t.Run("mem", func(t *testing.T) {
		l, rec := newLedger(t, store.NewMemStore(), opts...)
		fn(t, l, rec)
	})
	t.Run("bolt", func(t *testing.T) {
		l, rec := newLedger(t, tempBoltStore(t), opts...)
		fn(t, l, rec)
	})
}

func register(t *testing.T, l *Ledger, id royalty.AssetID, bps uint32) {
	t.Helper()
	_, err := l.RegisterPolicy(ctx, id, creator, bps)
	require.NoError(t, err)
}

// --- New ---

func TestNew_BindsAdmin(t *testing.T) {
	s := store.NewMemStore()
	l, _ := newLedger(t, s)
	assert.Equal(t, admin, l.Admin())

	_, err := New(s, admin, settle.Offline{})
	require.NoError(t, err)

	_, err = New(s, mallory, settle.Offline{})
	assert.ErrorIs(t, err, ErrAdminMismatch)
}

func TestNew_PersistentAdmin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := store.OpenBoltStore(path)
	require.NoError(t, err)
	_, err = New(s, admin, settle.Offline{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = New(s, mallory, settle.Offline{})
	assert.ErrorIs(t, err, ErrAdminMismatch)
	_, err = New(s, admin, settle.Offline{})
	assert.NoError(t, err)
}

func TestNew_InvalidParams(t *testing.T) {
	_, err := New(store.NewMemStore(), "", settle.Offline{})
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, err = New(nil, admin, settle.Offline{})
	assert.ErrorIs(t, err, store.ErrNilParam)

	_, err = New(store.NewMemStore(), admin, nil)
	assert.ErrorIs(t, err, store.ErrNilParam)
}

// --- RegisterPolicy ---

func TestRegisterPolicy(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, _ *recorder) {
		p, err := l.RegisterPolicy(ctx, 7, creator, 500)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), p.CreatedAt)

		got, ok, err := l.GetPolicy(7)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, creator, got.Creator)
		assert.Equal(t, uint32(500), got.RoyaltyBps)
		assert.True(t, got.IsActive)
		assert.Equal(t, uint64(1), got.CreatedAt)
	})
}

func TestRegisterPolicy_Sequencer(t *testing.T) {
	seq := SequencerFunc(func(context.Context) (uint64, error) { return 101, nil })
	forEachStore(t, func(t *testing.T, l *Ledger, _ *recorder) {
		p, err := l.RegisterPolicy(ctx, 7, creator, 500)
		require.NoError(t, err)
		assert.Equal(t, uint64(101), p.CreatedAt)
	}, WithSequencer(seq))
}

func TestRegisterPolicy_Duplicate(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, _ *recorder) {
		register(t, l, 1, 500)
		before, _, err := l.GetPolicy(1)
		require.NoError(t, err)

		for _, bps := range []uint32{500, 1, 1000} {
			_, err := l.RegisterPolicy(ctx, 1, alice, bps)
			assert.ErrorIs(t, err, ErrAlreadyExists)
		}

		after, _, err := l.GetPolicy(1)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestRegisterPolicy_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		creator principal.Principal
		bps     uint32
		want    error
	}{
		{"zero bps", creator, 0, ErrInvalidPercentage},
		{"bps above max", creator, royalty.MaxRoyaltyBps + 1, ErrInvalidPercentage},
		{"bad percentage checked before recipient", "", 5000, ErrInvalidPercentage},
		{"empty creator", "", 500, ErrInvalidRecipient},
		{"malformed creator", "not a principal", 500, ErrInvalidRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLedger(t, store.NewMemStore())
			_, err := l.RegisterPolicy(ctx, 1, tt.creator, tt.bps)
			assert.ErrorIs(t, err, tt.want)

			_, ok, err := l.GetPolicy(1)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRegisterPolicy_Paused(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	require.NoError(t, l.Pause(ctx, admin))

	// Pause is checked before every other predicate.
	_, err := l.RegisterPolicy(ctx, 1, "", 0)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

// --- RecordSale ---

func TestRecordSale_Example(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, rec *recorder) {
		register(t, l, 1, 500)

		res, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), res.Sequence)
		assert.Equal(t, uint64(50), res.RoyaltyPaid)
		assert.Equal(t, "tx-ref", res.SettlementRef)

		total, err := l.GetTotalDistributed()
		require.NoError(t, err)
		assert.Equal(t, uint64(50), total)

		require.Len(t, rec.calls, 1)
		assert.Equal(t, seller, rec.calls[0].from)
		assert.Equal(t, []royalty.Payout{{To: creator, Amount: 50}}, rec.calls[0].payouts)

		sale, ok, err := l.GetSale(1, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, seller, sale.Seller)
		assert.Equal(t, buyer, sale.Buyer)
		assert.Equal(t, uint64(1000), sale.SalePrice)
		assert.Equal(t, uint64(50), sale.RoyaltyPaid)
		assert.Equal(t, "tx-ref", sale.SettlementRef)
	})
}

func TestRecordSale_PaysFlooredRoyalty(t *testing.T) {
	tests := []struct {
		bps   uint32
		price uint64
		want  uint64
	}{
		{1, 1, 0},
		{1, 9999, 0},
		{1, 10000, 1},
		{250, 1001, 25},
		{999, 12345, 1233},
		{1000, 1, 0},
		{1000, 10, 1},
		{1000, math.MaxUint64, math.MaxUint64 / 10},
	}

	l, _ := newLedger(t, store.NewMemStore())
	var expected uint64
	for i, tt := range tests {
		id := royalty.AssetID(i + 1)
		register(t, l, id, tt.bps)

		before, err := l.GetTotalDistributed()
		require.NoError(t, err)

		res, err := l.RecordSale(ctx, id, seller, buyer, tt.price)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.RoyaltyPaid, "bps=%d price=%d", tt.bps, tt.price)

		after, err := l.GetTotalDistributed()
		require.NoError(t, err)
		assert.Equal(t, tt.want, after-before)
		expected += tt.want
	}

	total, err := l.GetTotalDistributed()
	require.NoError(t, err)
	assert.Equal(t, expected, total)
}

func TestRecordSale_ZeroRoyaltySkipsTransfer(t *testing.T) {
	l, rec := newLedger(t, store.NewMemStore())
	register(t, l, 1, 1)

	res, err := l.RecordSale(ctx, 1, seller, buyer, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Sequence)
	assert.Zero(t, res.RoyaltyPaid)
	assert.Empty(t, res.SettlementRef)
	assert.Zero(t, rec.count())
}

func TestRecordSale_UnknownAsset(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	register(t, l, 1, 500)

	for _, price := range []uint64{1, 1000, math.MaxUint64} {
		_, err := l.RecordSale(ctx, 99, seller, buyer, price)
		assert.ErrorIs(t, err, ErrAssetNotFound)
	}
}

func TestRecordSale_ZeroPrice(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())

	// Price is checked before existence.
	_, err := l.RecordSale(ctx, 99, seller, buyer, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestRecordSale_TransferFailureRollsBack(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, rec *recorder) {
		register(t, l, 1, 500)
		_, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
		require.NoError(t, err)

		cause := errors.New("node unreachable")
		rec.fail = cause
		_, err = l.RecordSale(ctx, 1, seller, buyer, 2000)
		assert.ErrorIs(t, err, ErrTransferFailed)
		assert.ErrorIs(t, err, cause)

		seq, err := l.LastSaleSequence(1)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), seq)
		_, ok, err := l.GetSale(1, 2)
		require.NoError(t, err)
		assert.False(t, ok)
		total, err := l.GetTotalDistributed()
		require.NoError(t, err)
		assert.Equal(t, uint64(50), total)

		rec.fail = nil
		res, err := l.RecordSale(ctx, 1, seller, buyer, 2000)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), res.Sequence)
	})
}

func TestRecordSale_TotalOverflow(t *testing.T) {
	s := store.NewMemStore()
	l, rec := newLedger(t, s)
	register(t, l, 1, 500)
	require.NoError(t, s.Update(func(tx store.Tx) error {
		return tx.SetTotalDistributed(math.MaxUint64 - 10)
	}))

	_, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
	assert.ErrorIs(t, err, ErrTotalOverflow)
	assert.Zero(t, rec.count())

	seq, err := l.LastSaleSequence(1)
	require.NoError(t, err)
	assert.Zero(t, seq)
}

func TestRecordSale_SequencesPerAsset(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, _ *recorder) {
		register(t, l, 1, 500)
		register(t, l, 2, 500)
		register(t, l, 3, 500)

		order := []royalty.AssetID{1, 2, 1, 3, 3, 1, 2, 1}
		want := map[royalty.AssetID]uint64{}
		for _, id := range order {
			res, err := l.RecordSale(ctx, id, seller, buyer, 100)
			require.NoError(t, err)
			want[id]++
			assert.Equal(t, want[id], res.Sequence, "asset %d", id)
		}

		for id, n := range want {
			sales, err := l.ListSales(id)
			require.NoError(t, err)
			require.Len(t, sales, int(n))
			for i, s := range sales {
				assert.Equal(t, uint64(i+1), s.Sequence)
			}
		}
	})
}

func TestRecordSale_Concurrent(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	register(t, l, 1, 1000)
	register(t, l, 2, 1000)

	const perAsset = 25
	var wg sync.WaitGroup
	for _, id := range []royalty.AssetID{1, 2} {
		for i := 0; i < perAsset; i++ {
			wg.Add(1)
			go func(id royalty.AssetID) {
				defer wg.Done()
				_, err := l.RecordSale(ctx, id, seller, buyer, 100)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	for _, id := range []royalty.AssetID{1, 2} {
		sales, err := l.ListSales(id)
		require.NoError(t, err)
		require.Len(t, sales, perAsset)
		for i, s := range sales {
			assert.Equal(t, uint64(i+1), s.Sequence)
		}
	}
	total, err := l.GetTotalDistributed()
	require.NoError(t, err)
	assert.Equal(t, uint64(2*perAsset*10), total)
}

func TestRecordSale_Timestamp(t *testing.T) {
	height := uint64(840000)
	seq := SequencerFunc(func(context.Context) (uint64, error) { return height, nil })
	l, _ := newLedger(t, store.NewMemStore(), WithSequencer(seq))
	register(t, l, 1, 500)

	height++
	_, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
	require.NoError(t, err)
	sale, _, err := l.GetSale(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(840001), sale.Timestamp)
}

func TestRecordSale_TimestampSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := store.OpenBoltStore(path)
	require.NoError(t, err)
	l, _ := newLedger(t, s)
	register(t, l, 1, 500)

	var last uint64
	for range 3 {
		res, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
		require.NoError(t, err)
		sale, _, err := l.GetSale(1, res.Sequence)
		require.NoError(t, err)
		assert.Greater(t, sale.Timestamp, last)
		last = sale.Timestamp
	}
	require.NoError(t, s.Close())

	s, err = store.OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	l, _ = newLedger(t, s)
	res, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
	require.NoError(t, err)
	sale, _, err := l.GetSale(1, res.Sequence)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.Sequence)
	assert.Greater(t, sale.Timestamp, last)
}

func TestRecordSale_FailedSaleDoesNotAdvanceClock(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, rec *recorder) {
		register(t, l, 1, 500)
		rec.fail = errors.New("node down")
		_, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
		require.Error(t, err)

		rec.fail = nil
		_, err = l.RecordSale(ctx, 1, seller, buyer, 1000)
		require.NoError(t, err)
		sale, _, err := l.GetSale(1, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), sale.Timestamp)
	})
}

// --- UpdatePercentage / Deactivate ---

func TestUpdatePercentage(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	register(t, l, 1, 500)
	_, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
	require.NoError(t, err)

	require.NoError(t, l.UpdatePercentage(ctx, creator, 1, 1000))
	p, _, err := l.GetPolicy(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), p.RoyaltyBps)

	// Past sales keep their royalty.
	sale, _, err := l.GetSale(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), sale.RoyaltyPaid)

	res, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.RoyaltyPaid)
}

func TestUpdatePercentage_OutOfRange(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	register(t, l, 1, 500)

	err := l.UpdatePercentage(ctx, creator, 1, 1500)
	assert.ErrorIs(t, err, ErrInvalidPercentage)

	p, _, err := l.GetPolicy(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(500), p.RoyaltyBps)
}

func TestUpdatePercentage_Ordering(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	register(t, l, 1, 500)

	assert.ErrorIs(t, l.UpdatePercentage(ctx, creator, 2, 1500), ErrAssetNotFound)
	assert.ErrorIs(t, l.UpdatePercentage(ctx, mallory, 1, 1500), ErrNotAuthorized)
	assert.ErrorIs(t, l.UpdatePercentage(ctx, creator, 1, 0), ErrInvalidPercentage)

	require.NoError(t, l.Pause(ctx, admin))
	assert.ErrorIs(t, l.UpdatePercentage(ctx, creator, 2, 1500), ErrNotAuthorized)
}

func TestDeactivate(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, rec *recorder) {
		register(t, l, 1, 500)
		_, err := l.RecordSale(ctx, 1, seller, buyer, 1000)
		require.NoError(t, err)

		require.NoError(t, l.Deactivate(ctx, creator, 1))
		first, _, err := l.GetPolicy(1)
		require.NoError(t, err)
		assert.False(t, first.IsActive)

		require.NoError(t, l.Deactivate(ctx, creator, 1))
		second, _, err := l.GetPolicy(1)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		_, err = l.RecordSale(ctx, 1, seller, buyer, 1000)
		assert.ErrorIs(t, err, ErrNotAuthorized)

		sales, err := l.ListSales(1)
		require.NoError(t, err)
		assert.Len(t, sales, 1)
		total, err := l.GetTotalDistributed()
		require.NoError(t, err)
		assert.Equal(t, uint64(50), total)
		assert.Equal(t, 1, rec.count())
	})
}

func TestDeactivate_Rejections(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	register(t, l, 1, 500)

	assert.ErrorIs(t, l.Deactivate(ctx, creator, 2), ErrAssetNotFound)
	assert.ErrorIs(t, l.Deactivate(ctx, admin, 1), ErrNotAuthorized)

	p, _, err := l.GetPolicy(1)
	require.NoError(t, err)
	assert.True(t, p.IsActive)
}

// --- ConfigureSplits ---

func TestConfigureSplits(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, _ *recorder) {
		register(t, l, 1, 500)

		entries := []royalty.SplitEntry{
			{Recipient: bob, SplitBps: 2000},
			{Recipient: alice, SplitBps: 3000},
		}
		require.NoError(t, l.ConfigureSplits(ctx, creator, 1, entries))

		got, err := l.GetSplits(1)
		require.NoError(t, err)
		assert.Equal(t, []royalty.SplitEntry{
			{Recipient: alice, SplitBps: 3000},
			{Recipient: bob, SplitBps: 2000},
		}, got)

		require.NoError(t, l.ConfigureSplits(ctx, creator, 1, []royalty.SplitEntry{{Recipient: bob, SplitBps: 10000}}))
		got, err = l.GetSplits(1)
		require.NoError(t, err)
		assert.Equal(t, []royalty.SplitEntry{{Recipient: bob, SplitBps: 10000}}, got)

		require.NoError(t, l.ConfigureSplits(ctx, creator, 1, nil))
		got, err = l.GetSplits(1)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestConfigureSplits_RejectedAtomically(t *testing.T) {
	many := make([]royalty.SplitEntry, royalty.MaxSplitRecipients+1)
	for i := range many {
		many[i] = royalty.SplitEntry{Recipient: principal.Principal(string(rune('a'+i)) + "@example.com"), SplitBps: 100}
	}

	tests := []struct {
		name    string
		caller  principal.Principal
		entries []royalty.SplitEntry
		want    error
	}{
		{"sum exceeded", creator, []royalty.SplitEntry{{Recipient: alice, SplitBps: 6000}, {Recipient: bob, SplitBps: 4001}}, ErrInvalidPercentage},
		{"too many", creator, many, ErrInvalidPercentage},
		{"zero share", creator, []royalty.SplitEntry{{Recipient: alice, SplitBps: 0}}, ErrInvalidPercentage},
		{"percentage before recipient", creator, []royalty.SplitEntry{{Recipient: "", SplitBps: 10001}}, ErrInvalidPercentage},
		{"bad recipient", creator, []royalty.SplitEntry{{Recipient: alice, SplitBps: 100}, {Recipient: "nobody", SplitBps: 100}}, ErrInvalidRecipient},
		{"duplicate recipient", creator, []royalty.SplitEntry{{Recipient: alice, SplitBps: 100}, {Recipient: alice, SplitBps: 100}}, ErrInvalidRecipient},
		{"not creator", mallory, []royalty.SplitEntry{{Recipient: mallory, SplitBps: 100}}, ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLedger(t, store.NewMemStore())
			register(t, l, 1, 500)
			initial := []royalty.SplitEntry{{Recipient: alice, SplitBps: 2500}}
			require.NoError(t, l.ConfigureSplits(ctx, creator, 1, initial))

			err := l.ConfigureSplits(ctx, tt.caller, 1, tt.entries)
			assert.ErrorIs(t, err, tt.want)

			got, err := l.GetSplits(1)
			require.NoError(t, err)
			assert.Equal(t, initial, got)
		})
	}
}

func TestConfigureSplits_UnknownAsset(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	err := l.ConfigureSplits(ctx, creator, 5, []royalty.SplitEntry{{Recipient: alice, SplitBps: 20000}})
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

// --- Split modes ---

func TestSplitInformational_PaysCreator(t *testing.T) {
	l, rec := newLedger(t, store.NewMemStore())
	assert.Equal(t, SplitInformational, l.SplitMode())
	register(t, l, 1, 1000)
	require.NoError(t, l.ConfigureSplits(ctx, creator, 1, []royalty.SplitEntry{{Recipient: alice, SplitBps: 5000}}))

	res, err := l.RecordSale(ctx, 1, seller, buyer, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), res.RoyaltyPaid)
	assert.Equal(t, []royalty.Payout{{To: creator, Amount: 1000}}, rec.calls[0].payouts)
}

func TestSplitDistribute(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, rec *recorder) {
		register(t, l, 1, 1000)
		require.NoError(t, l.ConfigureSplits(ctx, creator, 1, []royalty.SplitEntry{
			{Recipient: bob, SplitBps: 2000},
			{Recipient: alice, SplitBps: 3000},
		}))

		res, err := l.RecordSale(ctx, 1, seller, buyer, 10000)
		require.NoError(t, err)
		want := []royalty.Payout{
			{To: alice, Amount: 300},
			{To: bob, Amount: 200},
			{To: creator, Amount: 500},
		}
		assert.Equal(t, uint64(1000), res.RoyaltyPaid)
		assert.Equal(t, want, res.Payouts)
		require.Len(t, rec.calls, 1)
		assert.Equal(t, want, rec.calls[0].payouts)

		sale, _, err := l.GetSale(1, 1)
		require.NoError(t, err)
		assert.Equal(t, want, sale.Payouts)
	}, WithSplitMode(SplitDistribute))
}

func TestSplitDistribute_DustStaysWithSeller(t *testing.T) {
	l, rec := newLedger(t, store.NewMemStore(), WithSplitMode(SplitDistribute))
	register(t, l, 1, 1000)
	require.NoError(t, l.ConfigureSplits(ctx, creator, 1, []royalty.SplitEntry{
		{Recipient: alice, SplitBps: 3333},
		{Recipient: bob, SplitBps: 3333},
	}))

	res, err := l.RecordSale(ctx, 1, seller, buyer, 70)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), res.RoyaltyPaid)
	assert.Equal(t, uint64(6), royalty.TotalPaid(rec.calls[0].payouts))

	total, err := l.GetTotalDistributed()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), total)
}

func TestParseSplitMode(t *testing.T) {
	for in, want := range map[string]SplitMode{
		"":              SplitInformational,
		"informational": SplitInformational,
		"Distribute":    SplitDistribute,
	} {
		got, err := ParseSplitMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if in != "" {
			assert.Equal(t, want, mustParse(t, got.String()))
		}
	}
	_, err := ParseSplitMode("weighted")
	assert.Error(t, err)
}

func mustParse(t *testing.T, s string) SplitMode {
	t.Helper()
	m, err := ParseSplitMode(s)
	require.NoError(t, err)
	return m
}

// --- Pause / Resume ---

func TestPause_NonAdmin(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())
	register(t, l, 1, 500)

	assert.ErrorIs(t, l.Pause(ctx, creator), ErrNotAuthorized)
	paused, err := l.IsPaused()
	require.NoError(t, err)
	assert.False(t, paused)

	_, err = l.RecordSale(ctx, 1, seller, buyer, 1000)
	assert.NoError(t, err)
}

func TestPause_BlocksMutations(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *Ledger, _ *recorder) {
		register(t, l, 1, 500)
		require.NoError(t, l.Pause(ctx, admin))
		require.NoError(t, l.Pause(ctx, admin))

		paused, err := l.IsPaused()
		require.NoError(t, err)
		assert.True(t, paused)

		_, err = l.RegisterPolicy(ctx, 2, creator, 500)
		assert.ErrorIs(t, err, ErrNotAuthorized)
		_, err = l.RecordSale(ctx, 1, seller, buyer, 0)
		assert.ErrorIs(t, err, ErrNotAuthorized)
		assert.ErrorIs(t, l.UpdatePercentage(ctx, creator, 1, 100), ErrNotAuthorized)
		assert.ErrorIs(t, l.Deactivate(ctx, creator, 1), ErrNotAuthorized)
		assert.ErrorIs(t, l.ConfigureSplits(ctx, creator, 1, nil), ErrNotAuthorized)

		// Reads still work.
		_, ok, err := l.GetPolicy(1)
		require.NoError(t, err)
		assert.True(t, ok)

		assert.ErrorIs(t, l.Resume(ctx, creator), ErrNotAuthorized)
		require.NoError(t, l.Resume(ctx, admin))
		require.NoError(t, l.Resume(ctx, admin))

		_, err = l.RecordSale(ctx, 1, seller, buyer, 1000)
		assert.NoError(t, err)
	})
}

// --- Reads ---

func TestReads_Absent(t *testing.T) {
	l, _ := newLedger(t, store.NewMemStore())

	_, ok, err := l.GetPolicy(1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.GetSale(1, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	sales, err := l.ListSales(1)
	require.NoError(t, err)
	assert.Empty(t, sales)

	splits, err := l.GetSplits(1)
	require.NoError(t, err)
	assert.Empty(t, splits)

	total, err := l.GetTotalDistributed()
	require.NoError(t, err)
	assert.Zero(t, total)

	_, ok, err = l.RoyaltyInfo(ctx, 1, 1000)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoyaltyInfo(t *testing.T) {
	l, rec := newLedger(t, store.NewMemStore())
	register(t, l, 1, 250)

	q, ok, err := l.RoyaltyInfo(ctx, 1, 4000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(100), q.RoyaltyAmount)
	assert.Equal(t, []royalty.Payout{{To: creator, Amount: 100}}, q.Payouts)
	assert.True(t, q.Active)

	require.NoError(t, l.Deactivate(ctx, creator, 1))
	q, ok, err = l.RoyaltyInfo(ctx, 1, 4000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, q.Active)

	_, _, err = l.RoyaltyInfo(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	assert.Zero(t, rec.count())
	seq, err := l.LastSaleSequence(1)
	require.NoError(t, err)
	assert.Zero(t, seq)
}

// --- Errors ---

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "not_authorized", ErrorKind(ErrNotAuthorized))
	assert.Equal(t, "transfer_failed", ErrorKind(errors.Join(errors.New("x"), ErrTransferFailed)))
	assert.Equal(t, "invalid_price", ErrorKind(ErrInvalidPrice))
	assert.Equal(t, "internal", ErrorKind(store.ErrClosed))
	assert.Equal(t, "internal", ErrorKind(ErrTotalOverflow))
}

func TestClosedStore(t *testing.T) {
	s := store.NewMemStore()
	l, _ := newLedger(t, s)
	require.NoError(t, s.Close())

	_, err := l.RegisterPolicy(ctx, 1, creator, 500)
	assert.ErrorIs(t, err, store.ErrClosed)
	_, _, err = l.GetPolicy(1)
	assert.ErrorIs(t, err, store.ErrClosed)
}
