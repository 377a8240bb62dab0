// Copyright (c) 2025 BVK Chaitanya

package tx

import "fmt"

// ValidationError reports a transaction field that failed validation.
// Validation runs before any nonce allocation or cryptographic work, so a
// validation failure has no side effects.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func checkRange(field string, v, min, max int64) error {
	if v < min || v > max {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%d is outside [%d, %d]", v, min, max)}
	}
	return nil
}

func (o *OrderInfo) validate() error {
	if o.MarketIndex > MaxMarketIndex {
		return &ValidationError{Field: "market_index", Reason: fmt.Sprintf("%d is above the maximum %d", o.MarketIndex, MaxMarketIndex)}
	}
	if err := checkRange("client_order_index", o.ClientOrderIndex, MinClientOrderIndex, MaxClientOrderIndex); err != nil {
		return err
	}
	if err := checkRange("base_amount", o.BaseAmount, MinBaseAmount, MaxBaseAmount); err != nil {
		return err
	}
	if o.Price < MinOrderPrice {
		return &ValidationError{Field: "price", Reason: "cannot be zero"}
	}
	if o.OrderType > maxOrderType {
		return &ValidationError{Field: "order_type", Reason: fmt.Sprintf("%d is not a valid order type", o.OrderType)}
	}
	if o.TimeInForce > TimeInForcePostOnly {
		return &ValidationError{Field: "time_in_force", Reason: fmt.Sprintf("%d is not a valid time-in-force", o.TimeInForce)}
	}
	if o.IsTriggerOrder() {
		if o.TriggerPrice == 0 {
			return &ValidationError{Field: "trigger_price", Reason: "required for trigger order types"}
		}
	} else if o.TriggerPrice != 0 {
		return &ValidationError{Field: "trigger_price", Reason: "must be zero for non-trigger order types"}
	}
	if o.OrderExpiry < 0 {
		return &ValidationError{Field: "order_expiry", Reason: "cannot be negative"}
	}
	return nil
}

func (t *CreateOrder) Validate() error {
	return t.Order.validate()
}

func (t *CancelOrder) Validate() error {
	if t.MarketIndex > MaxMarketIndex {
		return &ValidationError{Field: "market_index", Reason: fmt.Sprintf("%d is above the maximum %d", t.MarketIndex, MaxMarketIndex)}
	}
	return checkRange("order_index", t.OrderIndex, MinOrderIndex, MaxOrderIndex)
}

func (t *CancelAllOrders) Validate() error {
	if t.TimeInForce > CancelAllAbortScheduled {
		return &ValidationError{Field: "time_in_force", Reason: fmt.Sprintf("%d is not a valid cancel-all time-in-force", t.TimeInForce)}
	}
	if t.TimeInForce != CancelAllImmediate && t.Time <= 0 {
		return &ValidationError{Field: "time", Reason: "required for scheduled cancellation"}
	}
	return nil
}

func (t *ModifyOrder) Validate() error {
	if t.MarketIndex > MaxMarketIndex {
		return &ValidationError{Field: "market_index", Reason: fmt.Sprintf("%d is above the maximum %d", t.MarketIndex, MaxMarketIndex)}
	}
	if err := checkRange("order_index", t.OrderIndex, MinOrderIndex, MaxOrderIndex); err != nil {
		return err
	}
	if err := checkRange("base_amount", t.BaseAmount, MinBaseAmount, MaxBaseAmount); err != nil {
		return err
	}
	if t.Price < MinOrderPrice {
		return &ValidationError{Field: "price", Reason: "cannot be zero"}
	}
	return nil
}

func (t *CreateGroupedOrders) Validate() error {
	var want int
	switch t.GroupingType {
	case GroupingOneTriggersOther, GroupingOneCancelsOther:
		want = 2
	case GroupingOneTriggersOneCancels:
		want = 3
	default:
		return &ValidationError{Field: "grouping_type", Reason: fmt.Sprintf("%d is not a valid grouping type", t.GroupingType)}
	}
	if len(t.Orders) != want {
		return &ValidationError{Field: "orders", Reason: fmt.Sprintf("grouping type %d requires exactly %d orders, got %d", t.GroupingType, want, len(t.Orders))}
	}
	market := t.Orders[0].MarketIndex
	for i := range t.Orders {
		if err := t.Orders[i].validate(); err != nil {
			return err
		}
		if t.Orders[i].MarketIndex != market {
			return &ValidationError{Field: "orders", Reason: "all grouped orders must target the same market"}
		}
	}
	return nil
}

func (t *Transfer) Validate() error {
	if err := checkRange("to_account_index", t.ToAccountIndex, 0, MaxAccountIndex); err != nil {
		return err
	}
	if err := checkRange("usdc_amount", t.USDCAmount, MinTransferAmount, MaxTransferAmount); err != nil {
		return err
	}
	if t.Fee < 0 {
		return &ValidationError{Field: "fee", Reason: "cannot be negative"}
	}
	if len(t.Memo) != 0 && len(t.Memo) != MemoLength {
		return &ValidationError{Field: "memo", Reason: fmt.Sprintf("must be empty or exactly %d bytes, got %d", MemoLength, len(t.Memo))}
	}
	return nil
}

func (t *Withdraw) Validate() error {
	return checkRange("usdc_amount", t.USDCAmount, MinTransferAmount, MaxTransferAmount)
}

func (t *ChangePubKey) Validate() error {
	if len(t.PubKey) != PubKeyLength {
		return &ValidationError{Field: "pub_key", Reason: fmt.Sprintf("must be exactly %d bytes, got %d", PubKeyLength, len(t.PubKey))}
	}
	return nil
}

func (t *CreateSubAccount) Validate() error {
	return nil
}

func (t *CreatePublicPool) Validate() error {
	if t.OperatorFee < 0 {
		return &ValidationError{Field: "operator_fee", Reason: "cannot be negative"}
	}
	if err := checkRange("initial_total_shares", t.InitialTotalShares, MinInitialTotalShares, MaxPoolShares); err != nil {
		return err
	}
	if t.MinOperatorShareRate < 0 {
		return &ValidationError{Field: "min_operator_share_rate", Reason: "cannot be negative"}
	}
	return nil
}

func (t *UpdatePublicPool) Validate() error {
	if t.PublicPoolIndex < 0 || t.PublicPoolIndex > MaxAccountIndex {
		return &ValidationError{Field: "public_pool_index", Reason: "is outside the account index range"}
	}
	if t.OperatorFee < 0 {
		return &ValidationError{Field: "operator_fee", Reason: "cannot be negative"}
	}
	if t.MinOperatorShareRate < 0 {
		return &ValidationError{Field: "min_operator_share_rate", Reason: "cannot be negative"}
	}
	return nil
}

func (t *MintShares) Validate() error {
	if t.PublicPoolIndex < 0 || t.PublicPoolIndex > MaxAccountIndex {
		return &ValidationError{Field: "public_pool_index", Reason: "is outside the account index range"}
	}
	return checkRange("share_amount", t.ShareAmount, 1, MaxPoolShares)
}

func (t *BurnShares) Validate() error {
	if t.PublicPoolIndex < 0 || t.PublicPoolIndex > MaxAccountIndex {
		return &ValidationError{Field: "public_pool_index", Reason: "is outside the account index range"}
	}
	return checkRange("share_amount", t.ShareAmount, 1, MaxPoolShares)
}

func (t *UpdateLeverage) Validate() error {
	if t.MarketIndex > MaxMarketIndex {
		return &ValidationError{Field: "market_index", Reason: fmt.Sprintf("%d is above the maximum %d", t.MarketIndex, MaxMarketIndex)}
	}
	if t.InitialMarginFraction == 0 || t.InitialMarginFraction > MaxMarginFraction {
		return &ValidationError{Field: "initial_margin_fraction", Reason: fmt.Sprintf("%d is outside [1, %d]", t.InitialMarginFraction, MaxMarginFraction)}
	}
	if t.MarginMode != MarginModeCross && t.MarginMode != MarginModeIsolated {
		return &ValidationError{Field: "margin_mode", Reason: "must be cross or isolated"}
	}
	return nil
}

func (t *UpdateMargin) Validate() error {
	if t.MarketIndex > MaxMarketIndex {
		return &ValidationError{Field: "market_index", Reason: fmt.Sprintf("%d is above the maximum %d", t.MarketIndex, MaxMarketIndex)}
	}
	if err := checkRange("usdc_amount", t.USDCAmount, 1, MaxExchangeUSDC); err != nil {
		return err
	}
	if t.Direction != MarginRemoveFromIsolated && t.Direction != MarginAddToIsolated {
		return &ValidationError{Field: "direction", Reason: "must be add or remove"}
	}
	return nil
}
