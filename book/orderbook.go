// Copyright (c) 2025 BVK Chaitanya

// Package book maintains local mirrors of venue-published order book and
// account state. Caches are replaced wholesale by snapshots and mutated
// incrementally by deltas; a sequence gap marks the cache stale until the
// next snapshot.
package book

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// Level is one price level. A zero size in a delta removes the level.
type Level struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// OrderBook mirrors one market's book with bids and asks keyed by price.
// All methods are safe for concurrent use.
type OrderBook struct {
	marketIndex uint8

	mu sync.RWMutex

	bids *btree.BTreeG[Level]
	asks *btree.BTreeG[Level]

	seq   int64
	stale bool
}

func byPrice(a, b Level) bool {
	return a.Price.LessThan(b.Price)
}

func NewOrderBook(marketIndex uint8) *OrderBook {
	return &OrderBook{
		marketIndex: marketIndex,
		bids:        btree.NewBTreeG[Level](byPrice),
		asks:        btree.NewBTreeG[Level](byPrice),
		stale:       true,
	}
}

func (b *OrderBook) MarketIndex() uint8 {
	return b.marketIndex
}

// Seq returns the sequence number of the last applied update.
func (b *OrderBook) Seq() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.seq
}

// Stale reports whether the cache is invalid (before the first snapshot or
// after a sequence gap).
func (b *OrderBook) Stale() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stale
}

// MarkStale invalidates the cache without clearing it. Called on a
// sequence gap or transport discontinuity; the next snapshot clears it.
func (b *OrderBook) MarkStale() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stale = true
}

// ApplySnapshot replaces the book contents wholesale and resets the
// sequence counter.
func (b *OrderBook) ApplySnapshot(seq int64, bids, asks []Level) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = btree.NewBTreeG[Level](byPrice)
	b.asks = btree.NewBTreeG[Level](byPrice)
	for _, v := range bids {
		if v.Size.IsPositive() {
			b.bids.Set(v)
		}
	}
	for _, v := range asks {
		if v.Size.IsPositive() {
			b.asks.Set(v)
		}
	}
	b.seq = seq
	b.stale = false
}

// ApplyDelta merges an incremental update. The caller is responsible for
// sequence continuity; ApplyDelta records the new sequence number as-is.
func (b *OrderBook) ApplyDelta(seq int64, bids, asks []Level) {
	b.mu.Lock()
	defer b.mu.Unlock()

	apply := func(t *btree.BTreeG[Level], levels []Level) {
		for _, v := range levels {
			if v.Size.IsZero() || v.Size.IsNegative() {
				t.Delete(v)
			} else {
				t.Set(v)
			}
		}
	}
	apply(b.bids, bids)
	apply(b.asks, asks)
	b.seq = seq
}

// BestBid returns the highest bid level.
func (b *OrderBook) BestBid() (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.Max()
}

// BestAsk returns the lowest ask level.
func (b *OrderBook) BestAsk() (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.asks.Min()
}

// MidPrice returns the midpoint of the best bid and ask.
func (b *OrderBook) MidPrice() (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bid, ok1 := b.bids.Max()
	ask, ok2 := b.asks.Min()
	if !ok1 || !ok2 {
		return decimal.Zero, false
	}
	return bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2)), true
}

// Spread returns best ask minus best bid.
func (b *OrderBook) Spread() (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bid, ok1 := b.bids.Max()
	ask, ok2 := b.asks.Min()
	if !ok1 || !ok2 {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}

// SpreadBps returns the spread in basis points of the best bid.
func (b *OrderBook) SpreadBps() (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bid, ok1 := b.bids.Max()
	ask, ok2 := b.asks.Min()
	if !ok1 || !ok2 || !bid.Price.IsPositive() {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price).Div(bid.Price).Mul(decimal.NewFromInt(10000)), true
}

// TopBids returns up to n bid levels, best first.
func (b *OrderBook) TopBids(n int) []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var levels []Level
	b.bids.Reverse(func(v Level) bool {
		if len(levels) >= n {
			return false
		}
		levels = append(levels, v)
		return true
	})
	return levels
}

// TopAsks returns up to n ask levels, best first.
func (b *OrderBook) TopAsks(n int) []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var levels []Level
	b.asks.Scan(func(v Level) bool {
		if len(levels) >= n {
			return false
		}
		levels = append(levels, v)
		return true
	})
	return levels
}

// Depth returns the number of bid and ask levels.
func (b *OrderBook) Depth() (bids, asks int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.Len(), b.asks.Len()
}

// AskVolumeToPrice sums ask sizes at or below the given price.
func (b *OrderBook) AskVolumeToPrice(price decimal.Decimal) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sum := decimal.Zero
	b.asks.Scan(func(v Level) bool {
		if v.Price.GreaterThan(price) {
			return false
		}
		sum = sum.Add(v.Size)
		return true
	})
	return sum
}

// BidVolumeToPrice sums bid sizes at or above the given price.
func (b *OrderBook) BidVolumeToPrice(price decimal.Decimal) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sum := decimal.Zero
	b.bids.Reverse(func(v Level) bool {
		if v.Price.LessThan(price) {
			return false
		}
		sum = sum.Add(v.Size)
		return true
	})
	return sum
}
