package wallet

import (
	"fmt"
	"sync"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/royaltyledger-go/principal"
)

// KeyRing maps proceeds-holder addresses to their signing keys.
type KeyRing struct {
	mu     sync.RWMutex
	keys   map[string]*KeyPair
	order  []string
	change *KeyPair
}

// NewKeyRing derives the first count external payout keys of w, plus the
// first internal key used for change.
func NewKeyRing(w *Wallet, count uint32) (*KeyRing, error) {
	kr := &KeyRing{keys: make(map[string]*KeyPair, count)}
	for i := uint32(0); i < count; i++ {
		kp, err := w.DerivePayoutKey(ExternalChain, i)
		if err != nil {
			return nil, err
		}
		kr.add(kp)
	}
	change, err := w.DerivePayoutKey(InternalChain, 0)
	if err != nil {
		return nil, err
	}
	kr.change = change
	kr.add(change)
	return kr, nil
}

// NewKeyRingFromKeys builds a ring from loose keys, e.g. imported WIFs.
func NewKeyRingFromKeys(network *NetworkConfig, keys ...*ec.PrivateKey) (*KeyRing, error) {
	kr := &KeyRing{keys: make(map[string]*KeyPair, len(keys))}
	for _, k := range keys {
		addr, err := AddressOf(k.PubKey(), network)
		if err != nil {
			return nil, err
		}
		kr.add(&KeyPair{PrivateKey: k, PublicKey: k.PubKey(), Address: addr, Path: "imported"})
	}
	return kr, nil
}

func (kr *KeyRing) add(kp *KeyPair) {
	kr.mu.Lock()
	defer kr.mu.Unlock()
	if _, ok := kr.keys[kp.Address]; !ok {
		kr.order = append(kr.order, kp.Address)
	}
	kr.keys[kp.Address] = kp
}

// PrivateKey returns the signing key of the proceeds holder p.
func (kr *KeyRing) PrivateKey(p principal.Principal) (*ec.PrivateKey, error) {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	kp, ok := kr.keys[string(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAddress, p)
	}
	return kp.PrivateKey, nil
}

// Addresses returns the ring's addresses in insertion order.
func (kr *KeyRing) Addresses() []string {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	return append([]string(nil), kr.order...)
}

// ChangeAddress returns the internal change address, or "" for rings built
// from loose keys.
func (kr *KeyRing) ChangeAddress() string {
	if kr.change == nil {
		return ""
	}
	return kr.change.Address
}
