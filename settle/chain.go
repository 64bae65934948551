package settle

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
	"go.uber.org/zap"

	"github.com/bitfsorg/royaltyledger-go/network"
	"github.com/bitfsorg/royaltyledger-go/paymail"
	"github.com/bitfsorg/royaltyledger-go/principal"
	"github.com/bitfsorg/royaltyledger-go/royalty"
)

// DefaultFeeRate is the payout transaction fee rate in satoshis per byte.
const DefaultFeeRate = uint64(1)

// Size estimate: ~148 bytes per P2PKH input, ~34 per output, 10 overhead.
const (
	txOverheadSize = 10
	txInputSize    = 148
	txOutputSize   = 34
)

// KeyRing supplies the signing key of a proceeds holder.
type KeyRing interface {
	PrivateKey(p principal.Principal) (*ec.PrivateKey, error)
}

// HandleResolver turns a paymail payee and amount into output scripts.
type HandleResolver func(h paymail.Handle, satoshis uint64) ([]paymail.PaymentOutput, error)

// ChainConfig configures a ChainTransferer.
type ChainConfig struct {
	Chain         network.BlockchainService // required
	Keys          KeyRing                   // required
	Mainnet       bool
	FeeRate       uint64         // sat/byte; 0 means DefaultFeeRate
	ChangeAddress string         // empty means back to the payer
	Resolve       HandleResolver // nil means paymail.ResolvePaymentDestination
	Logger        *zap.Logger
}

// ChainTransferer pays every payout of a sale in one P2PKH transaction
// funded from the proceeds holder's unspent outputs. The transaction is
// broadcast before Transfer returns; its txid is the receipt reference.
type ChainTransferer struct {
	cfg ChainConfig
	log *zap.Logger
}

// Compile-time interface check.
var _ Transferer = (*ChainTransferer)(nil)

// NewChainTransferer validates cfg and fills its defaults.
func NewChainTransferer(cfg ChainConfig) (*ChainTransferer, error) {
	if cfg.Chain == nil {
		return nil, errors.New("settle: chain service is required")
	}
	if cfg.Keys == nil {
		return nil, errors.New("settle: key ring is required")
	}
	if cfg.FeeRate == 0 {
		cfg.FeeRate = DefaultFeeRate
	}
	if cfg.Resolve == nil {
		cfg.Resolve = paymail.ResolvePaymentDestination
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ChainTransferer{cfg: cfg, log: log}, nil
}

// Transfer builds, signs and broadcasts the payout transaction.
func (c *ChainTransferer) Transfer(ctx context.Context, from principal.Principal, payouts []royalty.Payout) (Receipt, error) {
	if len(payouts) == 0 {
		return Receipt{}, ErrNoPayouts
	}
	key, err := c.cfg.Keys.PrivateKey(from)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrUnknownPayer, err)
	}
	payerAddr, err := script.NewAddressFromPublicKey(key.PubKey(), c.cfg.Mainnet)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: payer address: %w", ErrBuildFailed, err)
	}

	outputs, err := c.payoutOutputs(payouts)
	if err != nil {
		return Receipt{}, err
	}
	amount := royalty.TotalPaid(payouts)

	utxos, err := c.cfg.Chain.ListUnspent(ctx, payerAddr.AddressString)
	if err != nil {
		return Receipt{}, fmt.Errorf("settle: list unspent for %s: %w", payerAddr.AddressString, err)
	}
	inputs, inputTotal, fee, err := selectInputs(utxos, amount, len(outputs)+1, c.cfg.FeeRate)
	if err != nil {
		return Receipt{}, err
	}

	changeAddr := payerAddr
	if c.cfg.ChangeAddress != "" {
		if changeAddr, err = script.NewAddressFromString(c.cfg.ChangeAddress); err != nil {
			return Receipt{}, fmt.Errorf("%w: change address: %w", ErrBuildFailed, err)
		}
	}
	if change := inputTotal - amount - fee; change > 0 {
		lock, err := p2pkh.Lock(changeAddr)
		if err != nil {
			return Receipt{}, fmt.Errorf("%w: change script: %w", ErrBuildFailed, err)
		}
		outputs = append(outputs, &transaction.TransactionOutput{Satoshis: change, LockingScript: lock})
	}

	tx, err := buildPayoutTx(key, inputs, outputs)
	if err != nil {
		return Receipt{}, err
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	txid, err := c.cfg.Chain.BroadcastTx(ctx, tx.Hex())
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrBroadcastFailed, err)
	}
	c.log.Info("royalty payout broadcast",
		zap.String("txid", txid),
		zap.String("payer", string(from)),
		zap.Int("payees", len(payouts)),
		zap.Uint64("amount", amount),
		zap.Uint64("fee", fee))
	return Receipt{Ref: txid, Amount: amount}, nil
}

// payoutOutputs maps each payout to its output scripts. Address payees get
// one P2PKH output; handle payees get whatever their paymail host returns.
func (c *ChainTransferer) payoutOutputs(payouts []royalty.Payout) ([]*transaction.TransactionOutput, error) {
	var outs []*transaction.TransactionOutput
	for _, p := range payouts {
		if p.Amount == 0 {
			continue
		}
		if p.To.IsHandle() {
			h, err := paymail.ParseHandle(string(p.To))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidPayee, err)
			}
			dests, err := c.cfg.Resolve(*h, p.Amount)
			if err != nil {
				return nil, fmt.Errorf("%w: resolve %s: %w", ErrInvalidPayee, h, err)
			}
			for _, d := range dests {
				lock, err := script.NewFromHex(d.Script)
				if err != nil {
					return nil, fmt.Errorf("%w: %s output script: %w", ErrInvalidPayee, h, err)
				}
				outs = append(outs, &transaction.TransactionOutput{Satoshis: d.Satoshis, LockingScript: lock})
			}
			continue
		}

		addr, err := script.NewAddressFromString(string(p.To))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayee, p.To, err)
		}
		lock, err := p2pkh.Lock(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayee, p.To, err)
		}
		outs = append(outs, &transaction.TransactionOutput{Satoshis: p.Amount, LockingScript: lock})
	}
	if len(outs) == 0 {
		return nil, ErrNoPayouts
	}
	return outs, nil
}

// EstimateFee returns the fee of a P2PKH transaction with the given shape.
func EstimateFee(numInputs, numOutputs int, feeRate uint64) uint64 {
	return uint64(txOverheadSize+numInputs*txInputSize+numOutputs*txOutputSize) * feeRate
}

// selectInputs picks the largest outputs first until they cover amount plus
// the fee of a transaction with numOutputs outputs.
func selectInputs(utxos []*network.UTXO, amount uint64, numOutputs int, feeRate uint64) ([]*network.UTXO, uint64, uint64, error) {
	sorted := slices.Clone(utxos)
	slices.SortFunc(sorted, func(a, b *network.UTXO) int {
		return cmp.Compare(b.Amount, a.Amount)
	})

	var (
		picked []*network.UTXO
		total  uint64
	)
	for _, u := range sorted {
		picked = append(picked, u)
		total += u.Amount
		fee := EstimateFee(len(picked), numOutputs, feeRate)
		if total >= amount+fee {
			return picked, total, fee, nil
		}
	}
	need := amount + EstimateFee(max(len(picked), 1), numOutputs, feeRate)
	return nil, 0, 0, fmt.Errorf("%w: have %d satoshis in %d outputs, need %d",
		ErrInsufficientFunds, total, len(picked), need)
}

// buildPayoutTx assembles and signs a transaction spending inputs with key.
func buildPayoutTx(key *ec.PrivateKey, inputs []*network.UTXO, outputs []*transaction.TransactionOutput) (*transaction.Transaction, error) {
	tx := transaction.NewTransaction()

	for i, u := range inputs {
		txidHash, err := chainhash.NewHashFromHex(u.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: input %d txid: %w", ErrBuildFailed, i, err)
		}
		lockScript, err := script.NewFromHex(u.ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf("%w: input %d script: %w", ErrBuildFailed, i, err)
		}
		unlocker, err := p2pkh.Unlock(key, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: input %d unlocker: %w", ErrBuildFailed, i, err)
		}

		tx.AddInput(&transaction.TransactionInput{
			SourceTXID:       txidHash,
			SourceTxOutIndex: u.Vout,
			SequenceNumber:   0xffffffff,
		})
		tx.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      u.Amount,
			LockingScript: lockScript,
		})
		tx.Inputs[i].UnlockingScriptTemplate = unlocker
	}

	for _, o := range outputs {
		tx.AddOutput(o)
	}

	if err := tx.Sign(); err != nil {
		return nil, fmt.Errorf("%w: sign: %w", ErrBuildFailed, err)
	}
	return tx, nil
}
