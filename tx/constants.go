// Copyright (c) 2025 BVK Chaitanya

package tx

// Type identifies a transaction variant on the wire. The numeric values are
// fixed by the venue protocol and appear as the first byte of every canonical
// encoding.
type Type uint8

const (
	TypeChangePubKey        Type = 8
	TypeCreateSubAccount    Type = 9
	TypeCreatePublicPool    Type = 10
	TypeUpdatePublicPool    Type = 11
	TypeTransfer            Type = 12
	TypeWithdraw            Type = 13
	TypeCreateOrder         Type = 14
	TypeCancelOrder         Type = 15
	TypeCancelAllOrders     Type = 16
	TypeModifyOrder         Type = 17
	TypeMintShares          Type = 18
	TypeBurnShares          Type = 19
	TypeUpdateLeverage      Type = 20
	TypeCreateGroupedOrders Type = 28
	TypeUpdateMargin        Type = 29
)

func (t Type) String() string {
	switch t {
	case TypeChangePubKey:
		return "change-pub-key"
	case TypeCreateSubAccount:
		return "create-sub-account"
	case TypeCreatePublicPool:
		return "create-public-pool"
	case TypeUpdatePublicPool:
		return "update-public-pool"
	case TypeTransfer:
		return "transfer"
	case TypeWithdraw:
		return "withdraw"
	case TypeCreateOrder:
		return "create-order"
	case TypeCancelOrder:
		return "cancel-order"
	case TypeCancelAllOrders:
		return "cancel-all-orders"
	case TypeModifyOrder:
		return "modify-order"
	case TypeMintShares:
		return "mint-shares"
	case TypeBurnShares:
		return "burn-shares"
	case TypeUpdateLeverage:
		return "update-leverage"
	case TypeCreateGroupedOrders:
		return "create-grouped-orders"
	case TypeUpdateMargin:
		return "update-margin"
	}
	return "unknown"
}

// Order types.
const (
	OrderTypeLimit           uint8 = 0
	OrderTypeMarket          uint8 = 1
	OrderTypeStopLoss        uint8 = 2
	OrderTypeStopLossLimit   uint8 = 3
	OrderTypeTakeProfit      uint8 = 4
	OrderTypeTakeProfitLimit uint8 = 5
	OrderTypeTWAP            uint8 = 6

	maxOrderType = OrderTypeTWAP
)

// Order time-in-force values.
const (
	TimeInForceImmediateOrCancel uint8 = 0
	TimeInForceGoodTillTime      uint8 = 1
	TimeInForcePostOnly          uint8 = 2
)

// Grouping types for linked orders.
const (
	GroupingOneTriggersOther      uint8 = 1
	GroupingOneCancelsOther       uint8 = 2
	GroupingOneTriggersOneCancels uint8 = 3
)

// Cancel-all time-in-force values.
const (
	CancelAllImmediate      uint8 = 0
	CancelAllScheduled      uint8 = 1
	CancelAllAbortScheduled uint8 = 2
)

// Margin modes and isolated-margin directions.
const (
	MarginModeCross    uint8 = 0
	MarginModeIsolated uint8 = 1

	MarginRemoveFromIsolated uint8 = 0
	MarginAddToIsolated      uint8 = 1
)

// Protocol limits. Amounts are integer ticks; one USDC is 1e6 ticks.
const (
	OneUSDC = int64(1_000_000)

	MaxAccountIndex = int64(1)<<48 - 2
	MaxAPIKeyIndex  = uint8(254)
	MaxMarketIndex  = uint8(254)

	MaxNonce = int64(1)<<48 - 1

	MinClientOrderIndex = int64(1)
	MaxClientOrderIndex = int64(1)<<48 - 1
	MinOrderIndex       = MaxClientOrderIndex + 1
	MaxOrderIndex       = int64(1)<<56 - 1

	MinBaseAmount = int64(1)
	MaxBaseAmount = int64(1)<<48 - 1

	MinOrderPrice = uint32(1)

	MaxExchangeUSDC   = int64(1)<<60 - 1
	MinTransferAmount = int64(1)
	MaxTransferAmount = MaxExchangeUSDC

	MinInitialTotalShares = int64(1_000_000)
	MaxPoolShares         = int64(1)<<60 - 1

	MaxMarginFraction = uint16(10_000)

	// MemoLength is the fixed memo block size in transfer transactions.
	MemoLength = 32

	// PubKeyLength is the compressed public key size carried by a
	// change-pub-key transaction.
	PubKeyLength = 33
)
