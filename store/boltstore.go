package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
)

var (
	bucketPolicies  = []byte("policies")
	bucketSplits    = []byte("splits")
	bucketSales     = []byte("sales")
	bucketSequences = []byte("sequences")
	bucketMeta      = []byte("meta")
)

var (
	metaTotal  = []byte("total_distributed")
	metaPaused = []byte("paused")
	metaAdmin  = []byte("admin")
	metaClock  = []byte("clock")
)

// openTimeout bounds how long Open waits for another process's file lock.
const openTimeout = 5 * time.Second

// BoltStore wraps a bbolt database holding the ledger state.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPolicies, bucketSplits, bucketSales, bucketSequences, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Path returns the database file path.
func (s *BoltStore) Path() string { return s.db.Path() }

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// View runs fn in a bbolt read transaction.
func (s *BoltStore) View(fn func(Tx) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// Update runs fn in a bbolt write transaction; an error from fn rolls it back.
func (s *BoltStore) Update(fn func(Tx) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// assetKey encodes an asset id as an 8-byte big-endian key for sorted storage.
func assetKey(id royalty.AssetID) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

// splitKey is asset_id(8) || recipient.
func splitKey(id royalty.AssetID, recipient principal.Principal) []byte {
	k := make([]byte, 8+len(recipient))
	binary.BigEndian.PutUint64(k, uint64(id))
	copy(k[8:], recipient)
	return k
}

// saleRecordKey is asset_id(8) || sequence(8).
func saleRecordKey(id royalty.AssetID, seq uint64) []byte {
	k := make([]byte, 16)
	binary.BigEndian.PutUint64(k[:8], uint64(id))
	binary.BigEndian.PutUint64(k[8:], seq)
	return k
}

func uint64Value(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeUint64(b []byte) (uint64, error) {
	if b == nil {
		return 0, nil
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: expected 8-byte counter, got %d", ErrCorrupt, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// boltTx implements Tx over a bbolt transaction.
type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) checkWritable() error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	return nil
}

func (t *boltTx) Policy(id royalty.AssetID) (*royalty.Policy, bool, error) {
	data := t.tx.Bucket(bucketPolicies).Get(assetKey(id))
	if data == nil {
		return nil, false, nil
	}
	p, err := royalty.DeserializePolicy(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return p, true, nil
}

func (t *boltTx) PutPolicy(p *royalty.Policy) error {
	if p == nil {
		return fmt.Errorf("%w: policy", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	data, err := royalty.SerializePolicy(p)
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	if err := t.tx.Bucket(bucketPolicies).Put(assetKey(p.AssetID), data); err != nil {
		return fmt.Errorf("boltstore: put policy: %w", err)
	}
	return nil
}

func (t *boltTx) Splits(id royalty.AssetID) ([]royalty.SplitEntry, error) {
	prefix := assetKey(id)
	var entries []royalty.SplitEntry
	c := t.tx.Bucket(bucketSplits).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if len(v) != 4 {
			return nil, fmt.Errorf("%w: split value of %d bytes", ErrCorrupt, len(v))
		}
		entries = append(entries, royalty.SplitEntry{
			Recipient: principal.Principal(k[len(prefix):]),
			SplitBps:  binary.BigEndian.Uint32(v),
		})
	}
	return entries, nil
}

func (t *boltTx) ReplaceSplits(id royalty.AssetID, entries []royalty.SplitEntry) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	b := t.tx.Bucket(bucketSplits)
	prefix := assetKey(id)

	// Collect first: deleting while iterating a bbolt cursor skips keys.
	var stale [][]byte
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		stale = append(stale, bytes.Clone(k))
	}
	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return fmt.Errorf("boltstore: delete split: %w", err)
		}
	}

	for _, e := range entries {
		v := make([]byte, 4)
		binary.BigEndian.PutUint32(v, e.SplitBps)
		if err := b.Put(splitKey(id, e.Recipient), v); err != nil {
			return fmt.Errorf("boltstore: put split: %w", err)
		}
	}
	return nil
}

func (t *boltTx) Sale(id royalty.AssetID, seq uint64) (*royalty.SaleRecord, bool, error) {
	data := t.tx.Bucket(bucketSales).Get(saleRecordKey(id, seq))
	if data == nil {
		return nil, false, nil
	}
	r, err := royalty.DeserializeSale(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return r, true, nil
}

func (t *boltTx) PutSale(r *royalty.SaleRecord) error {
	if r == nil {
		return fmt.Errorf("%w: sale record", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	b := t.tx.Bucket(bucketSales)
	key := saleRecordKey(r.AssetID, r.Sequence)
	if b.Get(key) != nil {
		return fmt.Errorf("%w: asset %d sequence %d", ErrDuplicateSale, r.AssetID, r.Sequence)
	}
	data, err := royalty.SerializeSale(r)
	if err != nil {
		return fmt.Errorf("encode sale: %w", err)
	}
	if err := b.Put(key, data); err != nil {
		return fmt.Errorf("boltstore: put sale: %w", err)
	}
	return nil
}

func (t *boltTx) Sales(id royalty.AssetID) ([]*royalty.SaleRecord, error) {
	prefix := assetKey(id)
	var out []*royalty.SaleRecord
	c := t.tx.Bucket(bucketSales).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		r, err := royalty.DeserializeSale(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (t *boltTx) LastSequence(id royalty.AssetID) (uint64, error) {
	return decodeUint64(t.tx.Bucket(bucketSequences).Get(assetKey(id)))
}

func (t *boltTx) SetLastSequence(id royalty.AssetID, seq uint64) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if err := t.tx.Bucket(bucketSequences).Put(assetKey(id), uint64Value(seq)); err != nil {
		return fmt.Errorf("boltstore: put sequence: %w", err)
	}
	return nil
}

func (t *boltTx) TotalDistributed() (uint64, error) {
	return decodeUint64(t.tx.Bucket(bucketMeta).Get(metaTotal))
}

func (t *boltTx) SetTotalDistributed(total uint64) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if err := t.tx.Bucket(bucketMeta).Put(metaTotal, uint64Value(total)); err != nil {
		return fmt.Errorf("boltstore: put total: %w", err)
	}
	return nil
}

func (t *boltTx) NextSequence() (uint64, error) {
	if err := t.checkWritable(); err != nil {
		return 0, err
	}
	b := t.tx.Bucket(bucketMeta)
	cur, err := decodeUint64(b.Get(metaClock))
	if err != nil {
		return 0, err
	}
	next := cur + 1
	if err := b.Put(metaClock, uint64Value(next)); err != nil {
		return 0, fmt.Errorf("boltstore: put clock: %w", err)
	}
	return next, nil
}

func (t *boltTx) Paused() (bool, error) {
	v := t.tx.Bucket(bucketMeta).Get(metaPaused)
	return len(v) == 1 && v[0] == 1, nil
}

func (t *boltTx) SetPaused(paused bool) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	v := []byte{0}
	if paused {
		v[0] = 1
	}
	if err := t.tx.Bucket(bucketMeta).Put(metaPaused, v); err != nil {
		return fmt.Errorf("boltstore: put paused: %w", err)
	}
	return nil
}

func (t *boltTx) Admin() (principal.Principal, bool, error) {
	v := t.tx.Bucket(bucketMeta).Get(metaAdmin)
	if v == nil {
		return "", false, nil
	}
	return principal.Principal(v), true, nil
}

func (t *boltTx) SetAdmin(admin principal.Principal) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if err := t.tx.Bucket(bucketMeta).Put(metaAdmin, []byte(admin)); err != nil {
		return fmt.Errorf("boltstore: put admin: %w", err)
	}
	return nil
}
