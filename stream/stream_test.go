// Copyright (c) 2025 BVK Chaitanya

package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/bvk/l2trade/book"
)

var upgrader = ws.Upgrader{}

// testServer runs handle for every websocket connection it accepts.
func testServer(t *testing.T, handle func(conn *ws.Conn)) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("could not upgrade: %v", err)
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(s.Close)
	return s
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func readSubscribe(t *testing.T, conn *ws.Conn, channel string) {
	t.Helper()
	m := new(Message)
	if err := conn.ReadJSON(m); err != nil {
		t.Errorf("could not read subscribe message: %v", err)
		return
	}
	if m.Type != MsgSubscribe || m.Channel != channel {
		t.Errorf("message = %+v, want subscribe to %s", m, channel)
	}
}

func nextEvent[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for event")
		panic("unreachable")
	}
}

func levels(pairs ...string) []book.Level {
	var vs []book.Level
	for i := 0; i+1 < len(pairs); i += 2 {
		vs = append(vs, book.Level{
			Price: decimal.RequireFromString(pairs[i]),
			Size:  decimal.RequireFromString(pairs[i+1]),
		})
	}
	return vs
}

func TestOrderBookSequencing(t *testing.T) {
	ctx := context.Background()

	resubc := make(chan struct{})
	s := testServer(t, func(conn *ws.Conn) {
		readSubscribe(t, conn, "order_book/0")

		conn.WriteJSON(&Message{Type: MsgSnapshot, Channel: "order_book/0", Seq: 4,
			Bids: levels("100", "2"), Asks: levels("101", "3")})
		conn.WriteJSON(&Message{Type: MsgUpdate, Channel: "order_book/0", Seq: 5,
			Bids: levels("100", "5")})
		conn.WriteJSON(&Message{Type: MsgUpdate, Channel: "order_book/0", Seq: 6,
			Asks: levels("101", "0", "102", "1")})
		// Duplicate; must be dropped silently.
		conn.WriteJSON(&Message{Type: MsgUpdate, Channel: "order_book/0", Seq: 6,
			Asks: levels("150", "9")})
		// Gap: seq 7 never sent.
		conn.WriteJSON(&Message{Type: MsgUpdate, Channel: "order_book/0", Seq: 8,
			Bids: levels("99", "1")})

		// Client must ask for a fresh snapshot.
		readSubscribe(t, conn, "order_book/0")
		close(resubc)
		conn.WriteJSON(&Message{Type: MsgSnapshot, Channel: "order_book/0", Seq: 20,
			Bids: levels("98", "1"), Asks: levels("99", "1")})

		// Hold the connection open till the client goes away.
		conn.ReadMessage()
	})

	c, err := New(ctx, wsURL(s), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	b, err := c.OrderBook(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	ch, unsubscribe, err := c.BookEvents(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	if e := nextEvent(t, ch); e.Kind != KindSnapshot || e.Seq != 4 {
		t.Fatalf("event = %v/%d, want snapshot/4", e.Kind, e.Seq)
	}
	if e := nextEvent(t, ch); e.Kind != KindDelta || e.Seq != 5 {
		t.Fatalf("event = %v/%d, want delta/5", e.Kind, e.Seq)
	}
	if e := nextEvent(t, ch); e.Kind != KindDelta || e.Seq != 6 {
		t.Fatalf("event = %v/%d, want delta/6", e.Kind, e.Seq)
	}

	// The duplicate seq 6 produces no event; the gap at seq 8 produces a
	// resync without applying the delta.
	if e := nextEvent(t, ch); e.Kind != KindResync {
		t.Fatalf("event = %v/%d, want resync", e.Kind, e.Seq)
	}
	if _, ok := <-resubc; ok {
		t.Fatalf("resubscribe channel must be closed")
	}

	if e := nextEvent(t, ch); e.Kind != KindSnapshot || e.Seq != 20 {
		t.Fatalf("event = %v/%d, want snapshot/20", e.Kind, e.Seq)
	}
	if b.Stale() {
		t.Fatalf("book is stale after fresh snapshot")
	}
	if bid, _ := b.BestBid(); !bid.Price.Equal(decimal.NewFromInt(98)) {
		t.Fatalf("best bid = %v; stale levels survived resync", bid)
	}
	if b.Seq() != 20 {
		t.Fatalf("seq = %d, want 20", b.Seq())
	}
}

func TestReconnectResubscribes(t *testing.T) {
	ctx := context.Background()

	var nconn atomic.Int32
	s := testServer(t, func(conn *ws.Conn) {
		n := nconn.Add(1)
		readSubscribe(t, conn, "order_book/1")
		if n == 1 {
			conn.WriteJSON(&Message{Type: MsgSnapshot, Channel: "order_book/1", Seq: 1,
				Bids: levels("10", "1"), Asks: levels("11", "1")})
			return // drop the connection
		}
		conn.WriteJSON(&Message{Type: MsgSnapshot, Channel: "order_book/1", Seq: 1,
			Bids: levels("10", "2"), Asks: levels("11", "2")})
		conn.ReadMessage()
	})

	c, err := New(ctx, wsURL(s), &Options{WebsocketRetryInterval: 100 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.OrderBook(ctx, 1); err != nil {
		t.Fatal(err)
	}
	ch, unsubscribe, err := c.BookEvents(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	if e := nextEvent(t, ch); e.Kind != KindSnapshot {
		t.Fatalf("event = %v, want snapshot", e.Kind)
	}
	// Connection drop invalidates the mirror and the new session starts
	// with a snapshot again.
	if e := nextEvent(t, ch); e.Kind != KindResync {
		t.Fatalf("event = %v, want resync", e.Kind)
	}
	e := nextEvent(t, ch)
	if e.Kind != KindSnapshot {
		t.Fatalf("event = %v, want snapshot", e.Kind)
	}
	if bid, _ := e.Book.BestBid(); !bid.Size.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("best bid = %v, want size 2 from second session", bid)
	}
}

func TestAccountChannel(t *testing.T) {
	ctx := context.Background()

	s := testServer(t, func(conn *ws.Conn) {
		readSubscribe(t, conn, "account/7")

		coll := decimal.NewFromInt(5000)
		conn.WriteJSON(&Message{Type: MsgSnapshot, Channel: "account/7", Seq: 1,
			Account: &book.AccountUpdate{
				Collateral: &coll,
				Orders: []book.OpenOrder{
					{OrderIndex: 9001, MarketIndex: 0, Price: decimal.NewFromInt(99), Remaining: decimal.NewFromInt(1)},
				},
			}})
		conn.WriteJSON(&Message{Type: MsgUpdate, Channel: "account/7", Seq: 2,
			Account: &book.AccountUpdate{
				Orders: []book.OpenOrder{{OrderIndex: 9001}},
			}})
		conn.ReadMessage()
	})

	c, err := New(ctx, wsURL(s), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	a, err := c.AccountState(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	ch, unsubscribe, err := c.AccountEvents(7, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	if e := nextEvent(t, ch); e.Kind != KindSnapshot || e.Seq != 1 {
		t.Fatalf("event = %v/%d, want snapshot/1", e.Kind, e.Seq)
	}
	if !a.Collateral().Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("collateral = %v, want 5000", a.Collateral())
	}
	if _, ok := a.Order(9001); !ok {
		t.Fatalf("expected open order 9001")
	}

	if e := nextEvent(t, ch); e.Kind != KindDelta || e.Seq != 2 {
		t.Fatalf("event = %v/%d, want delta/2", e.Kind, e.Seq)
	}
	if _, ok := a.Order(9001); ok {
		t.Fatalf("filled order still open")
	}
}
