// Copyright (c) 2025 BVK Chaitanya

package tx

import (
	"encoding/binary"
)

// builder accumulates the canonical byte form. All multi-byte integers are
// big-endian and fixed-width; there are no length prefixes or optional
// fields, so identical logical fields always produce identical bytes.
type builder struct {
	buf []byte
}

func (b *builder) u8(v uint8) {
	b.buf = append(b.buf, v)
}

func (b *builder) u16(v uint16) {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
}

func (b *builder) u32(v uint32) {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
}

func (b *builder) i64(v int64) {
	b.buf = binary.BigEndian.AppendUint64(b.buf, uint64(v))
}

func (b *builder) bool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

// block appends p as a fixed-width field of size n, zero-padded on the
// right. Validation guarantees len(p) is either zero or exactly n.
func (b *builder) block(p []byte, n int) {
	b.buf = append(b.buf, p...)
	for i := len(p); i < n; i++ {
		b.buf = append(b.buf, 0)
	}
}

// Encode returns the canonical byte form of a transaction: the type tag,
// the envelope fields in fixed order, and the variant payload. The result
// is the signing preimage; its digest identifies the transaction.
func Encode(env *Envelope, t Transaction) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	b := &builder{buf: make([]byte, 0, 64)}
	b.u8(uint8(t.TxType()))
	b.u32(env.ChainID)
	b.i64(env.AccountIndex)
	b.u8(env.APIKeyIndex)
	b.i64(env.Nonce)
	b.i64(env.ExpiredAt)
	t.encode(b)
	return b.buf, nil
}

func (o *OrderInfo) encode(b *builder) {
	b.u8(o.MarketIndex)
	b.i64(o.ClientOrderIndex)
	b.i64(o.BaseAmount)
	b.u32(o.Price)
	b.bool(o.IsAsk)
	b.u8(o.OrderType)
	b.u8(o.TimeInForce)
	b.bool(o.ReduceOnly)
	b.u32(o.TriggerPrice)
	b.i64(o.OrderExpiry)
}

func (t *CreateOrder) encode(b *builder) {
	t.Order.encode(b)
}

func (t *CancelOrder) encode(b *builder) {
	b.u8(t.MarketIndex)
	b.i64(t.OrderIndex)
}

func (t *CancelAllOrders) encode(b *builder) {
	b.u8(t.TimeInForce)
	b.i64(t.Time)
}

func (t *ModifyOrder) encode(b *builder) {
	b.u8(t.MarketIndex)
	b.i64(t.OrderIndex)
	b.i64(t.BaseAmount)
	b.u32(t.Price)
	b.u32(t.TriggerPrice)
}

func (t *CreateGroupedOrders) encode(b *builder) {
	// The order count is implied by the grouping type, so the orders are
	// written back-to-back without a count prefix.
	b.u8(t.GroupingType)
	for i := range t.Orders {
		t.Orders[i].encode(b)
	}
}

func (t *Transfer) encode(b *builder) {
	b.i64(t.ToAccountIndex)
	b.i64(t.USDCAmount)
	b.i64(t.Fee)
	b.block(t.Memo, MemoLength)
}

func (t *Withdraw) encode(b *builder) {
	b.i64(t.USDCAmount)
}

func (t *ChangePubKey) encode(b *builder) {
	b.block(t.PubKey, PubKeyLength)
}

func (t *CreateSubAccount) encode(b *builder) {}

func (t *CreatePublicPool) encode(b *builder) {
	b.i64(t.OperatorFee)
	b.i64(t.InitialTotalShares)
	b.i64(t.MinOperatorShareRate)
}

func (t *UpdatePublicPool) encode(b *builder) {
	b.i64(t.PublicPoolIndex)
	b.u32(uint32(t.Status))
	b.i64(t.OperatorFee)
	b.i64(t.MinOperatorShareRate)
}

func (t *MintShares) encode(b *builder) {
	b.i64(t.PublicPoolIndex)
	b.i64(t.ShareAmount)
}

func (t *BurnShares) encode(b *builder) {
	b.i64(t.PublicPoolIndex)
	b.i64(t.ShareAmount)
}

func (t *UpdateLeverage) encode(b *builder) {
	b.u8(t.MarketIndex)
	b.u16(t.InitialMarginFraction)
	b.u8(t.MarginMode)
}

func (t *UpdateMargin) encode(b *builder) {
	b.u8(t.MarketIndex)
	b.i64(t.USDCAmount)
	b.u8(t.Direction)
}
