// Copyright (c) 2025 BVK Chaitanya

package book

import (
	"testing"

	"github.com/shopspring/decimal"
)

func level(price, size string) Level {
	return Level{
		Price: decimal.RequireFromString(price),
		Size:  decimal.RequireFromString(size),
	}
}

func TestOrderBookSnapshot(t *testing.T) {
	b := NewOrderBook(1)
	if !b.Stale() {
		t.Fatalf("new book must be stale")
	}

	b.ApplySnapshot(10,
		[]Level{level("100", "2"), level("99", "1"), level("101", "3")},
		[]Level{level("102", "4"), level("103", "1")})
	if b.Stale() {
		t.Fatalf("book is stale after snapshot")
	}
	if b.Seq() != 10 {
		t.Fatalf("seq = %d, want 10", b.Seq())
	}

	bid, ok := b.BestBid()
	if !ok || !bid.Price.Equal(decimal.RequireFromString("101")) {
		t.Fatalf("best bid = %v, want 101", bid)
	}
	ask, ok := b.BestAsk()
	if !ok || !ask.Price.Equal(decimal.RequireFromString("102")) {
		t.Fatalf("best ask = %v, want 102", ask)
	}

	mid, ok := b.MidPrice()
	if !ok || !mid.Equal(decimal.RequireFromString("101.5")) {
		t.Fatalf("mid = %v, want 101.5", mid)
	}
	spread, ok := b.Spread()
	if !ok || !spread.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("spread = %v, want 1", spread)
	}

	nbids, nasks := b.Depth()
	if nbids != 3 || nasks != 2 {
		t.Fatalf("depth = %d/%d, want 3/2", nbids, nasks)
	}
}

func TestOrderBookDelta(t *testing.T) {
	b := NewOrderBook(1)
	b.ApplySnapshot(1,
		[]Level{level("100", "2"), level("99", "1")},
		[]Level{level("101", "4")})

	// Update an existing level, remove one, add one.
	b.ApplyDelta(2,
		[]Level{level("100", "5"), level("99", "0")},
		[]Level{level("100.5", "1")})
	if b.Seq() != 2 {
		t.Fatalf("seq = %d, want 2", b.Seq())
	}

	bids := b.TopBids(10)
	if len(bids) != 1 || !bids[0].Size.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("bids = %v", bids)
	}
	asks := b.TopAsks(10)
	if len(asks) != 2 || !asks[0].Price.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("asks = %v", asks)
	}
}

func TestOrderBookSnapshotReplaces(t *testing.T) {
	b := NewOrderBook(1)
	b.ApplySnapshot(1, []Level{level("100", "2")}, []Level{level("101", "4")})
	b.MarkStale()
	if !b.Stale() {
		t.Fatalf("book must be stale after MarkStale")
	}

	b.ApplySnapshot(50, []Level{level("90", "1")}, []Level{level("91", "1")})
	if b.Stale() {
		t.Fatalf("book is stale after fresh snapshot")
	}
	if bid, _ := b.BestBid(); !bid.Price.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("old levels survived snapshot: %v", bid)
	}
	nbids, nasks := b.Depth()
	if nbids != 1 || nasks != 1 {
		t.Fatalf("depth = %d/%d, want 1/1", nbids, nasks)
	}
}

func TestOrderBookTopLevels(t *testing.T) {
	b := NewOrderBook(1)
	b.ApplySnapshot(1,
		[]Level{level("100", "2"), level("99", "3"), level("98", "5")},
		[]Level{level("101", "1"), level("102", "2")})

	if bids := b.TopBids(2); len(bids) != 2 || !bids[0].Price.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("top 2 bids = %v", bids)
	}
	if asks := b.TopAsks(10); len(asks) != 2 {
		t.Fatalf("top 10 asks = %v", asks)
	}
	if bids := b.TopBids(0); len(bids) != 0 {
		t.Fatalf("top 0 bids = %v, want none", bids)
	}
	if asks := b.TopAsks(-1); len(asks) != 0 {
		t.Fatalf("top -1 asks = %v, want none", asks)
	}
}

func TestOrderBookVolumeToPrice(t *testing.T) {
	b := NewOrderBook(1)
	b.ApplySnapshot(1,
		[]Level{level("100", "2"), level("99", "3"), level("98", "5")},
		[]Level{level("101", "1"), level("102", "2"), level("103", "4")})

	if v := b.AskVolumeToPrice(decimal.NewFromInt(102)); !v.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("ask volume to 102 = %v, want 3", v)
	}
	if v := b.BidVolumeToPrice(decimal.NewFromInt(99)); !v.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("bid volume to 99 = %v, want 5", v)
	}
}

func TestAccountCache(t *testing.T) {
	a := NewAccount(7)
	if !a.Stale() {
		t.Fatalf("new account must be stale")
	}

	coll := decimal.NewFromInt(1000)
	a.ApplySnapshot(5, &AccountUpdate{
		Collateral: &coll,
		Positions: []Position{
			{MarketIndex: 0, Size: decimal.NewFromInt(10), EntryPrice: decimal.NewFromInt(100)},
		},
		Orders: []OpenOrder{
			{OrderIndex: 9001, MarketIndex: 0, Price: decimal.NewFromInt(99), Remaining: decimal.NewFromInt(1)},
		},
	})
	if a.Stale() || a.Seq() != 5 {
		t.Fatalf("stale=%v seq=%d after snapshot", a.Stale(), a.Seq())
	}
	if !a.Collateral().Equal(coll) {
		t.Fatalf("collateral = %v", a.Collateral())
	}

	// Delta: fill closes the order, position grows.
	a.ApplyDelta(6, &AccountUpdate{
		Positions: []Position{
			{MarketIndex: 0, Size: decimal.NewFromInt(11), EntryPrice: decimal.RequireFromString("99.9")},
		},
		Orders: []OpenOrder{
			{OrderIndex: 9001, Remaining: decimal.Zero},
		},
	})
	if _, ok := a.Order(9001); ok {
		t.Fatalf("filled order still open")
	}
	p, ok := a.Position(0)
	if !ok || !p.Size.Equal(decimal.NewFromInt(11)) {
		t.Fatalf("position = %v", p)
	}

	// Delta: position fully closed.
	a.ApplyDelta(7, &AccountUpdate{
		Positions: []Position{{MarketIndex: 0, Size: decimal.Zero}},
	})
	if _, ok := a.Position(0); ok {
		t.Fatalf("closed position still cached")
	}
	if len(a.OpenOrders(-1)) != 0 {
		t.Fatalf("unexpected open orders: %v", a.OpenOrders(-1))
	}
}
