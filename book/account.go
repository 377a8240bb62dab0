// Copyright (c) 2025 BVK Chaitanya

package book

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Position is one market's net position. Size is signed; positive is long.
type Position struct {
	MarketIndex uint8           `json:"market_index"`
	Size        decimal.Decimal `json:"size"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	Margin      decimal.Decimal `json:"margin"`
}

// OpenOrder is one resting order on the account. Remaining is the unfilled
// base amount; a zero Remaining in a delta removes the order.
type OpenOrder struct {
	OrderIndex  int64           `json:"order_index"`
	MarketIndex uint8           `json:"market_index"`
	IsAsk       bool            `json:"is_ask"`
	Price       decimal.Decimal `json:"price"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// AccountUpdate carries the state of an account channel message. A
// snapshot carries the full state; a delta carries only changed entries.
type AccountUpdate struct {
	Collateral *decimal.Decimal `json:"collateral,omitempty"`
	Positions  []Position       `json:"positions,omitempty"`
	Orders     []OpenOrder      `json:"orders,omitempty"`
}

// Account mirrors one trading account's collateral, positions and open
// orders. All methods are safe for concurrent use.
type Account struct {
	accountIndex int64

	mu sync.RWMutex

	collateral decimal.Decimal
	positions  map[uint8]Position
	orders     map[int64]OpenOrder

	seq   int64
	stale bool
}

func NewAccount(accountIndex int64) *Account {
	return &Account{
		accountIndex: accountIndex,
		positions:    make(map[uint8]Position),
		orders:       make(map[int64]OpenOrder),
		stale:        true,
	}
}

func (a *Account) AccountIndex() int64 {
	return a.accountIndex
}

func (a *Account) Seq() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.seq
}

func (a *Account) Stale() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stale
}

func (a *Account) MarkStale() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stale = true
}

// ApplySnapshot replaces the account state wholesale.
func (a *Account) ApplySnapshot(seq int64, u *AccountUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.positions = make(map[uint8]Position)
	a.orders = make(map[int64]OpenOrder)
	a.collateral = decimal.Zero
	a.merge(u)
	a.seq = seq
	a.stale = false
}

// ApplyDelta merges changed entries. The caller guarantees sequence
// continuity.
func (a *Account) ApplyDelta(seq int64, u *AccountUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.merge(u)
	a.seq = seq
}

func (a *Account) merge(u *AccountUpdate) {
	if u.Collateral != nil {
		a.collateral = *u.Collateral
	}
	for _, p := range u.Positions {
		if p.Size.IsZero() {
			delete(a.positions, p.MarketIndex)
		} else {
			a.positions[p.MarketIndex] = p
		}
	}
	for _, o := range u.Orders {
		if o.Remaining.IsZero() {
			delete(a.orders, o.OrderIndex)
		} else {
			a.orders[o.OrderIndex] = o
		}
	}
}

func (a *Account) Collateral() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.collateral
}

// Position returns the position for a market, if any.
func (a *Account) Position(marketIndex uint8) (Position, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.positions[marketIndex]
	return p, ok
}

// Positions returns all open positions.
func (a *Account) Positions() []Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ps := make([]Position, 0, len(a.positions))
	for _, p := range a.positions {
		ps = append(ps, p)
	}
	return ps
}

// Order returns an open order by its order index.
func (a *Account) Order(orderIndex int64) (OpenOrder, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	o, ok := a.orders[orderIndex]
	return o, ok
}

// OpenOrders returns all open orders, optionally filtered by market.
func (a *Account) OpenOrders(marketIndex int) []OpenOrder {
	a.mu.RLock()
	defer a.mu.RUnlock()
	os := make([]OpenOrder, 0, len(a.orders))
	for _, o := range a.orders {
		if marketIndex >= 0 && int(o.MarketIndex) != marketIndex {
			continue
		}
		os = append(os, o)
	}
	return os
}
