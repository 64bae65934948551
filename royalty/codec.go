package royalty

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bitfsorg/royaltyledger-go/principal"
)

const (
	policyFixedSize = 21 // asset_id(8) + royalty_bps(4) + active(1) + created_at(8)
	saleFixedSize   = 40 // asset_id(8) + sequence(8) + price(8) + paid(8) + timestamp(8)
	stringLenSize   = 2  // uint16 length prefix
	payoutCountSize = 2  // uint16 payout count
	payoutFixedSize = 8  // amount(8)
)

// SerializePolicy encodes a policy as
// asset_id(8) | creator(2+n) | royalty_bps(4) | active(1) | created_at(8).
func SerializePolicy(p *Policy) ([]byte, error) {
	if len(p.Creator) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: creator too long", ErrInvalidPolicyData)
	}
	buf := make([]byte, policyFixedSize+stringLenSize+len(p.Creator))
	offset := 0

	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(p.AssetID))
	offset += 8

	offset = putString(buf, offset, string(p.Creator))

	binary.BigEndian.PutUint32(buf[offset:offset+4], p.RoyaltyBps)
	offset += 4

	if p.IsActive {
		buf[offset] = 1
	}
	offset++

	binary.BigEndian.PutUint64(buf[offset:offset+8], p.CreatedAt)
	return buf, nil
}

// DeserializePolicy decodes SerializePolicy output.
func DeserializePolicy(data []byte) (*Policy, error) {
	if len(data) < policyFixedSize+stringLenSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidPolicyData, len(data))
	}
	offset := 0

	p := &Policy{}
	p.AssetID = AssetID(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8

	creator, offset, ok := readString(data, offset)
	if !ok || len(data) != offset+13 {
		return nil, fmt.Errorf("%w: bad creator field", ErrInvalidPolicyData)
	}
	p.Creator = principal.Principal(creator)

	p.RoyaltyBps = binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	switch data[offset] {
	case 0:
	case 1:
		p.IsActive = true
	default:
		return nil, fmt.Errorf("%w: active flag %d", ErrInvalidPolicyData, data[offset])
	}
	offset++

	p.CreatedAt = binary.BigEndian.Uint64(data[offset : offset+8])
	return p, nil
}

// SerializeSale encodes a sale record as
// asset_id(8) | sequence(8) | seller(2+n) | buyer(2+n) | price(8) | paid(8) |
// timestamp(8) | num_payouts(2) | [to(2+n) amount(8)]... | ref(2+n).
func SerializeSale(r *SaleRecord) ([]byte, error) {
	if len(r.Payouts) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d payouts", ErrInvalidSaleData, len(r.Payouts))
	}
	strs := []string{string(r.Seller), string(r.Buyer), r.SettlementRef}
	for _, p := range r.Payouts {
		strs = append(strs, string(p.To))
	}
	size := saleFixedSize + payoutCountSize + payoutFixedSize*len(r.Payouts)
	for _, s := range strs {
		if len(s) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: field too long", ErrInvalidSaleData)
		}
		size += stringLenSize + len(s)
	}

	buf := make([]byte, size)
	offset := 0

	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(r.AssetID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], r.Sequence)
	offset += 8

	offset = putString(buf, offset, string(r.Seller))
	offset = putString(buf, offset, string(r.Buyer))

	binary.BigEndian.PutUint64(buf[offset:offset+8], r.SalePrice)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], r.RoyaltyPaid)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], r.Timestamp)
	offset += 8

	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(r.Payouts)))
	offset += 2
	for _, p := range r.Payouts {
		offset = putString(buf, offset, string(p.To))
		binary.BigEndian.PutUint64(buf[offset:offset+8], p.Amount)
		offset += 8
	}

	putString(buf, offset, r.SettlementRef)
	return buf, nil
}

// DeserializeSale decodes SerializeSale output.
func DeserializeSale(data []byte) (*SaleRecord, error) {
	if len(data) < saleFixedSize+payoutCountSize+3*stringLenSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidSaleData, len(data))
	}
	offset := 0
	r := &SaleRecord{}

	r.AssetID = AssetID(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	r.Sequence = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	seller, offset, ok := readString(data, offset)
	if !ok {
		return nil, fmt.Errorf("%w: bad seller field", ErrInvalidSaleData)
	}
	buyer, offset, ok := readString(data, offset)
	if !ok || len(data) < offset+26 {
		return nil, fmt.Errorf("%w: bad buyer field", ErrInvalidSaleData)
	}
	r.Seller = principal.Principal(seller)
	r.Buyer = principal.Principal(buyer)

	r.SalePrice = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	r.RoyaltyPaid = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	r.Timestamp = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	numPayouts := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if numPayouts > 0 {
		r.Payouts = make([]Payout, numPayouts)
	}
	for i := 0; i < numPayouts; i++ {
		var to string
		to, offset, ok = readString(data, offset)
		if !ok || len(data) < offset+8 {
			return nil, fmt.Errorf("%w: payout %d truncated", ErrInvalidSaleData, i)
		}
		r.Payouts[i].To = principal.Principal(to)
		r.Payouts[i].Amount = binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
	}

	ref, offset, ok := readString(data, offset)
	if !ok || offset != len(data) {
		return nil, fmt.Errorf("%w: bad settlement reference", ErrInvalidSaleData)
	}
	r.SettlementRef = ref
	return r, nil
}

// putString writes a uint16 length-prefixed string and returns the new offset.
func putString(buf []byte, offset int, s string) int {
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(s)))
	offset += 2
	copy(buf[offset:], s)
	return offset + len(s)
}

// readString reads a uint16 length-prefixed string.
func readString(data []byte, offset int) (string, int, bool) {
	if len(data) < offset+stringLenSize {
		return "", offset, false
	}
	n := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if len(data) < offset+n {
		return "", offset, false
	}
	return string(data[offset : offset+n]), offset + n, true
}
