package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	// BIP44 path constants.
	PurposeBIP44  = 44
	CoinTypeBSV   = 236
	PayoutAccount = 0

	// Chain indices.
	ExternalChain = 0 // proceeds-holder addresses
	InternalChain = 1 // payout change addresses

	// MaxKeyIndex is the largest non-hardened child index.
	MaxKeyIndex = 1<<31 - 1

	// Hardened is the BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet is an HD wallet holding proceeds-holder keys.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   *NetworkConfig
}

// KeyPair holds a derived key with its address and derivation path.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Address    string         `json:"address"`
	Path       string         `json:"path"`
}

// NewWallet creates a Wallet from a BIP39 seed. A nil network means mainnet.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	net := &chaincfg.TestNet
	if network.Mainnet {
		net = &chaincfg.MainNet
	}
	masterKey, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return &Wallet{masterKey: masterKey, network: network}, nil
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// DerivePayoutKey derives m/44'/236'/0'/chain/index.
func (w *Wallet) DerivePayoutKey(chain, index uint32) (*KeyPair, error) {
	if index > MaxKeyIndex {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if chain != ExternalChain && chain != InternalChain {
		return nil, fmt.Errorf("%w: unknown chain %d", ErrDerivationFailed, chain)
	}

	path := []uint32{
		PurposeBIP44 + Hardened,
		CoinTypeBSV + Hardened,
		PayoutAccount + Hardened,
		chain,
		index,
	}
	key := w.masterKey
	for depth, idx := range path {
		child, err := key.Child(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: depth %d: %w", ErrDerivationFailed, depth, err)
		}
		key = child
	}

	return w.keyPair(key, fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", PurposeBIP44, CoinTypeBSV, PayoutAccount, chain, index))
}

func (w *Wallet) keyPair(extKey *bip32.ExtendedKey, path string) (*KeyPair, error) {
	privKey, err := extKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: extract EC private key: %w", ErrDerivationFailed, err)
	}
	addr, err := AddressOf(privKey.PubKey(), w.network)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  privKey.PubKey(),
		Address:    addr,
		Path:       path,
	}, nil
}

// AddressOf returns the P2PKH address of pub on network.
func AddressOf(pub *ec.PublicKey, network *NetworkConfig) (string, error) {
	addr, err := script.NewAddressFromPublicKey(pub, network.Mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: address: %w", ErrDerivationFailed, err)
	}
	return addr.AddressString, nil
}
