// Copyright (c) 2025 BVK Chaitanya

// Package tx defines the venue's transaction variants as a closed tagged
// union with deterministic canonical encoding.
//
// Every variant carries the same envelope (chain id, account index, signing
// key index, nonce, expiry) and a variant-specific payload. Encoding is a
// pure function of the logical fields: a third party can recompute the
// encoded bytes, and therefore the digest, from the printed fields alone.
package tx

import "fmt"

// Envelope holds the fields common to every transaction variant. The nonce
// is part of the signed payload, so a signature is bound to exactly one
// nonce value.
type Envelope struct {
	ChainID      uint32
	AccountIndex int64
	APIKeyIndex  uint8
	Nonce        int64
	ExpiredAt    int64
}

func (e *Envelope) Validate() error {
	if e.AccountIndex < 0 || e.AccountIndex > MaxAccountIndex {
		return &ValidationError{Field: "account_index", Reason: fmt.Sprintf("%d is outside [0, %d]", e.AccountIndex, MaxAccountIndex)}
	}
	if e.APIKeyIndex > MaxAPIKeyIndex {
		return &ValidationError{Field: "api_key_index", Reason: fmt.Sprintf("%d is above the maximum %d", e.APIKeyIndex, MaxAPIKeyIndex)}
	}
	if e.Nonce < 0 || e.Nonce > MaxNonce {
		return &ValidationError{Field: "nonce", Reason: fmt.Sprintf("%d is outside [0, %d]", e.Nonce, MaxNonce)}
	}
	if e.ExpiredAt < 0 {
		return &ValidationError{Field: "expired_at", Reason: "cannot be negative"}
	}
	return nil
}

// Transaction is the closed set of transaction variants. The unexported
// encode method seals the interface, so the encoder's variant switch is
// exhaustive by construction and a new variant is a compile-time visible
// gap.
type Transaction interface {
	TxType() Type
	Validate() error

	encode(b *builder)
}

// OrderInfo holds the order fields shared by create-order and grouped-order
// transactions.
type OrderInfo struct {
	MarketIndex      uint8  `json:"market_index"`
	ClientOrderIndex int64  `json:"client_order_index"`
	BaseAmount       int64  `json:"base_amount"`
	Price            uint32 `json:"price"`
	IsAsk            bool   `json:"is_ask"`
	OrderType        uint8  `json:"order_type"`
	TimeInForce      uint8  `json:"time_in_force"`
	ReduceOnly       bool   `json:"reduce_only"`
	TriggerPrice     uint32 `json:"trigger_price"`
	OrderExpiry      int64  `json:"order_expiry"`
}

// IsTriggerOrder reports whether the order type takes a trigger price.
func (o *OrderInfo) IsTriggerOrder() bool {
	switch o.OrderType {
	case OrderTypeStopLoss, OrderTypeStopLossLimit, OrderTypeTakeProfit, OrderTypeTakeProfitLimit:
		return true
	}
	return false
}

type CreateOrder struct {
	Order OrderInfo `json:"order_info"`
}

type CancelOrder struct {
	MarketIndex uint8 `json:"market_index"`
	OrderIndex  int64 `json:"order_index"`
}

type CancelAllOrders struct {
	TimeInForce uint8 `json:"time_in_force"`
	Time        int64 `json:"time"`
}

type ModifyOrder struct {
	MarketIndex  uint8  `json:"market_index"`
	OrderIndex   int64  `json:"order_index"`
	BaseAmount   int64  `json:"base_amount"`
	Price        uint32 `json:"price"`
	TriggerPrice uint32 `json:"trigger_price"`
}

type CreateGroupedOrders struct {
	GroupingType uint8       `json:"grouping_type"`
	Orders       []OrderInfo `json:"orders"`
}

type Transfer struct {
	ToAccountIndex int64  `json:"to_account_index"`
	USDCAmount     int64  `json:"usdc_amount"`
	Fee            int64  `json:"fee"`
	Memo           []byte `json:"memo"`
}

type Withdraw struct {
	USDCAmount int64 `json:"usdc_amount"`
}

type ChangePubKey struct {
	PubKey []byte `json:"pub_key"`
}

type CreateSubAccount struct{}

type CreatePublicPool struct {
	OperatorFee          int64 `json:"operator_fee"`
	InitialTotalShares   int64 `json:"initial_total_shares"`
	MinOperatorShareRate int64 `json:"min_operator_share_rate"`
}

type UpdatePublicPool struct {
	PublicPoolIndex      int64 `json:"public_pool_index"`
	Status               int32 `json:"status"`
	OperatorFee          int64 `json:"operator_fee"`
	MinOperatorShareRate int64 `json:"min_operator_share_rate"`
}

type MintShares struct {
	PublicPoolIndex int64 `json:"public_pool_index"`
	ShareAmount     int64 `json:"share_amount"`
}

type BurnShares struct {
	PublicPoolIndex int64 `json:"public_pool_index"`
	ShareAmount     int64 `json:"share_amount"`
}

type UpdateLeverage struct {
	MarketIndex           uint8  `json:"market_index"`
	InitialMarginFraction uint16 `json:"initial_margin_fraction"`
	MarginMode            uint8  `json:"margin_mode"`
}

type UpdateMargin struct {
	MarketIndex uint8 `json:"market_index"`
	USDCAmount  int64 `json:"usdc_amount"`
	Direction   uint8 `json:"direction"`
}

func (*CreateOrder) TxType() Type         { return TypeCreateOrder }
func (*CancelOrder) TxType() Type         { return TypeCancelOrder }
func (*CancelAllOrders) TxType() Type     { return TypeCancelAllOrders }
func (*ModifyOrder) TxType() Type         { return TypeModifyOrder }
func (*CreateGroupedOrders) TxType() Type { return TypeCreateGroupedOrders }
func (*Transfer) TxType() Type            { return TypeTransfer }
func (*Withdraw) TxType() Type            { return TypeWithdraw }
func (*ChangePubKey) TxType() Type        { return TypeChangePubKey }
func (*CreateSubAccount) TxType() Type    { return TypeCreateSubAccount }
func (*CreatePublicPool) TxType() Type    { return TypeCreatePublicPool }
func (*UpdatePublicPool) TxType() Type    { return TypeUpdatePublicPool }
func (*MintShares) TxType() Type          { return TypeMintShares }
func (*BurnShares) TxType() Type          { return TypeBurnShares }
func (*UpdateLeverage) TxType() Type      { return TypeUpdateLeverage }
func (*UpdateMargin) TxType() Type        { return TypeUpdateMargin }
