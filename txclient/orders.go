// Copyright (c) 2025 BVK Chaitanya

package txclient

import (
	"fmt"

	"github.com/bvk/l2trade/tx"
)

// LimitOrder builds a resting limit order.
func LimitOrder(marketIndex uint8, clientOrderIndex, baseAmount int64, price uint32, isAsk bool) *tx.CreateOrder {
	return &tx.CreateOrder{
		Order: tx.OrderInfo{
			MarketIndex:      marketIndex,
			ClientOrderIndex: clientOrderIndex,
			BaseAmount:       baseAmount,
			Price:            price,
			IsAsk:            isAsk,
			OrderType:        tx.OrderTypeLimit,
			TimeInForce:      tx.TimeInForceGoodTillTime,
		},
	}
}

// PostOnlyOrder builds a limit order that is rejected instead of taking
// liquidity.
func PostOnlyOrder(marketIndex uint8, clientOrderIndex, baseAmount int64, price uint32, isAsk bool) *tx.CreateOrder {
	o := LimitOrder(marketIndex, clientOrderIndex, baseAmount, price, isAsk)
	o.Order.TimeInForce = tx.TimeInForcePostOnly
	return o
}

// MarketOrder builds an immediate-or-cancel market order. The price caps
// the worst acceptable average execution price.
func MarketOrder(marketIndex uint8, clientOrderIndex, baseAmount int64, worstPrice uint32, isAsk bool) *tx.CreateOrder {
	return &tx.CreateOrder{
		Order: tx.OrderInfo{
			MarketIndex:      marketIndex,
			ClientOrderIndex: clientOrderIndex,
			BaseAmount:       baseAmount,
			Price:            worstPrice,
			IsAsk:            isAsk,
			OrderType:        tx.OrderTypeMarket,
			TimeInForce:      tx.TimeInForceImmediateOrCancel,
		},
	}
}

// TakeProfitOrder builds a market take-profit triggered at triggerPrice.
func TakeProfitOrder(marketIndex uint8, clientOrderIndex, baseAmount int64, triggerPrice, worstPrice uint32, isAsk bool) *tx.CreateOrder {
	return &tx.CreateOrder{
		Order: tx.OrderInfo{
			MarketIndex:      marketIndex,
			ClientOrderIndex: clientOrderIndex,
			BaseAmount:       baseAmount,
			Price:            worstPrice,
			IsAsk:            isAsk,
			OrderType:        tx.OrderTypeTakeProfit,
			TimeInForce:      tx.TimeInForceImmediateOrCancel,
			ReduceOnly:       true,
			TriggerPrice:     triggerPrice,
		},
	}
}

// TakeProfitLimitOrder builds a limit take-profit triggered at
// triggerPrice.
func TakeProfitLimitOrder(marketIndex uint8, clientOrderIndex, baseAmount int64, triggerPrice, limitPrice uint32, isAsk bool) *tx.CreateOrder {
	o := TakeProfitOrder(marketIndex, clientOrderIndex, baseAmount, triggerPrice, limitPrice, isAsk)
	o.Order.OrderType = tx.OrderTypeTakeProfitLimit
	o.Order.TimeInForce = tx.TimeInForceGoodTillTime
	return o
}

// StopLossOrder builds a market stop-loss triggered at triggerPrice.
func StopLossOrder(marketIndex uint8, clientOrderIndex, baseAmount int64, triggerPrice, worstPrice uint32, isAsk bool) *tx.CreateOrder {
	o := TakeProfitOrder(marketIndex, clientOrderIndex, baseAmount, triggerPrice, worstPrice, isAsk)
	o.Order.OrderType = tx.OrderTypeStopLoss
	return o
}

// StopLossLimitOrder builds a limit stop-loss triggered at triggerPrice.
func StopLossLimitOrder(marketIndex uint8, clientOrderIndex, baseAmount int64, triggerPrice, limitPrice uint32, isAsk bool) *tx.CreateOrder {
	o := StopLossOrder(marketIndex, clientOrderIndex, baseAmount, triggerPrice, limitPrice, isAsk)
	o.Order.OrderType = tx.OrderTypeStopLossLimit
	o.Order.TimeInForce = tx.TimeInForceGoodTillTime
	return o
}

// OneCancelsOther links two orders so that a fill on one cancels the
// other.
func OneCancelsOther(first, second tx.OrderInfo) *tx.CreateGroupedOrders {
	return &tx.CreateGroupedOrders{
		GroupingType: tx.GroupingOneCancelsOther,
		Orders:       []tx.OrderInfo{first, second},
	}
}

// OneTriggersOther links two orders so that a fill on the first places
// the second.
func OneTriggersOther(first, second tx.OrderInfo) *tx.CreateGroupedOrders {
	return &tx.CreateGroupedOrders{
		GroupingType: tx.GroupingOneTriggersOther,
		Orders:       []tx.OrderInfo{first, second},
	}
}

// Bracket places an entry order with linked take-profit and stop-loss
// exits: a fill on the entry activates the exits and a fill on either exit
// cancels the other.
func Bracket(entry, takeProfit, stopLoss tx.OrderInfo) *tx.CreateGroupedOrders {
	return &tx.CreateGroupedOrders{
		GroupingType: tx.GroupingOneTriggersOneCancels,
		Orders:       []tx.OrderInfo{entry, takeProfit, stopLoss},
	}
}

// CancelAll builds an immediate cancel of every open order on the
// account.
func CancelAll() *tx.CancelAllOrders {
	return &tx.CancelAllOrders{TimeInForce: tx.CancelAllImmediate}
}

// ScheduledCancelAll arms a dead-man's-switch cancel at the given unix
// millisecond timestamp. Re-arming with a later time pushes the deadline
// out; AbortScheduledCancel disarms it.
func ScheduledCancelAll(at int64) *tx.CancelAllOrders {
	return &tx.CancelAllOrders{TimeInForce: tx.CancelAllScheduled, Time: at}
}

// AbortScheduledCancel disarms an earlier scheduled cancel-all.
func AbortScheduledCancel() *tx.CancelAllOrders {
	return &tx.CancelAllOrders{TimeInForce: tx.CancelAllAbortScheduled}
}

// LeverageUpdate converts a whole-number leverage multiplier to the
// venue's margin fraction representation.
func LeverageUpdate(marketIndex uint8, leverage uint16, marginMode uint8) (*tx.UpdateLeverage, error) {
	if leverage == 0 || leverage > tx.MaxMarginFraction {
		return nil, fmt.Errorf("invalid leverage multiplier %d", leverage)
	}
	return &tx.UpdateLeverage{
		MarketIndex:           marketIndex,
		InitialMarginFraction: tx.MaxMarginFraction / leverage,
		MarginMode:            marginMode,
	}, nil
}
