package royalty

import (
	"github.com/holiman/uint256"

	"github.com/bitfsorg/royaltyledger-go/principal"
)

// Compute returns floor(amount * bps / BasisPoints).
// The product is formed in 256 bits so no amount overflows; for
// bps <= BasisPoints the result always fits back into 64 bits.
func Compute(amount uint64, bps uint32) uint64 {
	if amount == 0 || bps == 0 {
		return 0
	}
	x := uint256.NewInt(amount)
	x.Mul(x, uint256.NewInt(uint64(bps)))
	x.Div(x, uint256.NewInt(BasisPoints))
	return x.Uint64()
}

// SplitPayouts divides royaltyAmount among the split recipients.
//
// Each recipient receives Compute(royaltyAmount, splitBps), floored
// independently. If the shares sum to less than BasisPoints the creator
// receives the unassigned share computed the same way. Whatever the
// flooring leaves over is paid to nobody. With no splits the creator is the
// sole payee. Zero-amount payouts are omitted; the order follows entries
// with the creator last.
func SplitPayouts(royaltyAmount uint64, creator principal.Principal, entries []SplitEntry) []Payout {
	if royaltyAmount == 0 {
		return nil
	}
	if len(entries) == 0 {
		return []Payout{{To: creator, Amount: royaltyAmount}}
	}

	payouts := make([]Payout, 0, len(entries)+1)
	for _, e := range entries {
		if amt := Compute(royaltyAmount, e.SplitBps); amt > 0 {
			payouts = append(payouts, Payout{To: e.Recipient, Amount: amt})
		}
	}
	if total := SplitTotal(entries); total < BasisPoints {
		if amt := Compute(royaltyAmount, uint32(BasisPoints-total)); amt > 0 {
			payouts = append(payouts, Payout{To: creator, Amount: amt})
		}
	}
	return payouts
}
