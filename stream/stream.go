// Copyright (c) 2025 BVK Chaitanya

// Package stream maintains realtime order book and account mirrors over
// the venue websocket feed. Each subscription carries its own sequence
// numbering; a gap invalidates the local cache and triggers a fresh
// snapshot from the server. Consumers observe cache transitions through
// per-subscription topics.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bvkgo/topic"
	ws "github.com/gorilla/websocket"

	"github.com/bvk/l2trade/book"
	"github.com/bvk/l2trade/ctxutil"
)

// EventKind classifies a cache transition delivered to subscribers.
type EventKind int

const (
	// KindSnapshot means the cache was replaced wholesale.
	KindSnapshot EventKind = iota

	// KindDelta means an in-sequence incremental update was merged.
	KindDelta

	// KindResync means the cache went stale (sequence gap or transport
	// discontinuity) and a fresh snapshot was requested. No deltas are
	// applied until the snapshot arrives.
	KindResync
)

func (k EventKind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindDelta:
		return "delta"
	case KindResync:
		return "resync"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// BookEvent reports a transition of one market's order book mirror.
type BookEvent struct {
	Kind EventKind
	Seq  int64
	Book *book.OrderBook
}

// AccountEvent reports a transition of one account mirror.
type AccountEvent struct {
	Kind    EventKind
	Seq     int64
	Account *book.Account
}

type bookState struct {
	book  *book.OrderBook
	topic *topic.Topic[BookEvent]
}

type accountState struct {
	account *book.Account
	topic   *topic.Topic[AccountEvent]
}

type Options struct {
	// WebsocketRetryInterval caps the reconnect backoff.
	WebsocketRetryInterval time.Duration

	// PingInterval is how often idle connections are pinged.
	PingInterval time.Duration
}

func (v *Options) setDefaults() {
	if v.WebsocketRetryInterval == 0 {
		v.WebsocketRetryInterval = 30 * time.Second
	}
	if v.PingInterval == 0 {
		v.PingInterval = 30 * time.Second
	}
}

// Client owns the websocket session and all local mirrors. A background
// goroutine redials on failure and resubscribes every registered channel;
// mirrors are marked stale across reconnects so consumers never act on a
// silently rewound cache.
type Client struct {
	opts Options

	url string

	cg ctxutil.CloseGroup

	mu sync.Mutex

	conn *ws.Conn

	books    map[uint8]*bookState
	accounts map[int64]*accountState
}

// New starts a websocket session with the venue. Subscriptions can be
// added before the dial completes; they are flushed once connected.
func New(ctx context.Context, url string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()

	c := &Client{
		opts:     *opts,
		url:      url,
		books:    make(map[uint8]*bookState),
		accounts: make(map[int64]*accountState),
	}
	c.cg.Go(c.goWatch)
	return c, nil
}

// Close stops the session and closes all subscription topics.
func (c *Client) Close() error {
	c.cg.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	for _, s := range c.books {
		s.topic.Close()
	}
	for _, s := range c.accounts {
		s.topic.Close()
	}
	return nil
}

// OrderBook subscribes to one market's book channel and returns the local
// mirror. Repeated calls for the same market return the same mirror.
func (c *Client) OrderBook(ctx context.Context, marketIndex uint8) (*book.OrderBook, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.books[marketIndex]; ok {
		return s.book, nil
	}
	s := &bookState{
		book:  book.NewOrderBook(marketIndex),
		topic: topic.New[BookEvent](),
	}
	c.books[marketIndex] = s

	if c.conn != nil {
		if err := c.writeJSONLocked(&Message{Type: MsgSubscribe, Channel: bookChannel(marketIndex)}); err != nil {
			slog.WarnContext(ctx, "could not send subscribe (will retry on reconnect)", "market", marketIndex, "error", err)
		}
	}
	return s.book, nil
}

// AccountState subscribes to one account's channel and returns the local
// mirror.
func (c *Client) AccountState(ctx context.Context, accountIndex int64) (*book.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.accounts[accountIndex]; ok {
		return s.account, nil
	}
	s := &accountState{
		account: book.NewAccount(accountIndex),
		topic:   topic.New[AccountEvent](),
	}
	c.accounts[accountIndex] = s

	if c.conn != nil {
		if err := c.writeJSONLocked(&Message{Type: MsgSubscribe, Channel: accountChannel(accountIndex)}); err != nil {
			slog.WarnContext(ctx, "could not send subscribe (will retry on reconnect)", "account", accountIndex, "error", err)
		}
	}
	return s.account, nil
}

// BookEvents subscribes to one market's cache transitions. The returned
// function cancels the subscription. The market must already have a
// mirror through OrderBook.
func (c *Client) BookEvents(marketIndex uint8, limit int) (<-chan BookEvent, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.books[marketIndex]
	if !ok {
		return nil, nil, os.ErrNotExist
	}
	r, ch, err := s.topic.Subscribe(limit, false /* includeRecent */)
	if err != nil {
		return nil, nil, err
	}
	return ch, r.Unsubscribe, nil
}

// AccountEvents subscribes to one account's cache transitions.
func (c *Client) AccountEvents(accountIndex int64, limit int) (<-chan AccountEvent, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.accounts[accountIndex]
	if !ok {
		return nil, nil, os.ErrNotExist
	}
	r, ch, err := s.topic.Subscribe(limit, false /* includeRecent */)
	if err != nil {
		return nil, nil, err
	}
	return ch, r.Unsubscribe, nil
}

func (c *Client) writeJSONLocked(m *Message) error {
	return c.conn.WriteJSON(m)
}

// writeJSON serializes websocket writes; the read loop and subscriber
// goroutines both send control messages.
func (c *Client) writeJSON(conn *ws.Conn, m *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return conn.WriteJSON(m)
}

func (c *Client) goWatch(ctx context.Context) {
	b := ctxutil.Backoff{Initial: time.Second, Max: c.opts.WebsocketRetryInterval}
	for ctx.Err() == nil {
		if err := c.watch(ctx); err != nil {
			if ctx.Err() == nil {
				slog.WarnContext(ctx, "websocket session closed (can retry)", "error", err)
				b.Sleep(ctx)
			}
		}
	}
}

// watch runs one websocket session to completion: dial, resubscribe every
// registered channel and dispatch messages until the connection fails.
func (c *Client) watch(ctx context.Context) (status error) {
	var dialer ws.Dialer
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		slog.ErrorContext(ctx, "could not dial to websocket feed", "error", err)
		return err
	}
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	// Every session begins with all caches stale: deltas sequenced against
	// the previous session cannot be trusted.
	c.mu.Lock()
	c.conn = conn
	var subs []string
	for index, s := range c.books {
		if !s.book.Stale() {
			s.book.MarkStale()
			s.topic.SendCh() <- BookEvent{Kind: KindResync, Seq: s.book.Seq(), Book: s.book}
		}
		subs = append(subs, bookChannel(index))
	}
	for index, s := range c.accounts {
		if !s.account.Stale() {
			s.account.MarkStale()
			s.topic.SendCh() <- AccountEvent{Kind: KindResync, Seq: s.account.Seq(), Account: s.account}
		}
		subs = append(subs, accountChannel(index))
	}
	c.mu.Unlock()

	for _, ch := range subs {
		if err := c.writeJSON(conn, &Message{Type: MsgSubscribe, Channel: ch}); err != nil {
			return err
		}
	}

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go c.goPing(pingCtx, conn)

	for ctx.Err() == nil {
		m, err := c.readMessage(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
		if err := c.handleMessage(ctx, conn, m); err != nil {
			slog.WarnContext(ctx, "could not handle websocket message (ignored)", "type", m.Type, "channel", m.Channel, "error", err)
		}
	}
	return nil
}

// goPing sends protocol pings so idle connections are not dropped by
// intermediaries.
func (c *Client) goPing(ctx context.Context, conn *ws.Conn) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.writeJSON(conn, &Message{Type: MsgPing}); err != nil {
				return
			}
		}
	}
}

func (c *Client) readMessage(ctx context.Context, conn *ws.Conn) (*Message, error) {
	nconn := conn.UnderlyingConn()
	stop := context.AfterFunc(ctx, func() {
		nconn.SetReadDeadline(time.Now())
	})

	_, msg, err := conn.ReadMessage()
	if !stop() {
		nconn.SetReadDeadline(time.Time{})
	}
	if err != nil {
		return nil, err
	}

	m := new(Message)
	if err := json.Unmarshal(msg, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Client) handleMessage(ctx context.Context, conn *ws.Conn, m *Message) error {
	switch m.Type {
	case MsgPing:
		return c.writeJSON(conn, &Message{Type: MsgPong})
	case MsgPong:
		return nil
	case MsgError:
		return fmt.Errorf("server error: %s", m.Message)
	case MsgSnapshot, MsgUpdate:
		// Handled below.
	default:
		return nil
	}

	kind, id, err := parseChannel(m.Channel)
	if err != nil {
		return err
	}
	switch kind {
	case "order_book":
		if id < 0 || id > int64(^uint8(0)) {
			return fmt.Errorf("invalid market index %d", id)
		}
		return c.handleBookMsg(conn, uint8(id), m)
	case "account":
		return c.handleAccountMsg(conn, id, m)
	}
	return fmt.Errorf("unknown channel kind %q", kind)
}

func (c *Client) handleBookMsg(conn *ws.Conn, marketIndex uint8, m *Message) error {
	c.mu.Lock()
	s, ok := c.books[marketIndex]
	c.mu.Unlock()
	if !ok {
		return nil // unsubscribed channel
	}

	if m.Type == MsgSnapshot {
		s.book.ApplySnapshot(m.Seq, m.Bids, m.Asks)
		s.topic.SendCh() <- BookEvent{Kind: KindSnapshot, Seq: m.Seq, Book: s.book}
		return nil
	}

	if s.book.Stale() {
		return nil // waiting for a snapshot
	}
	last := s.book.Seq()
	switch {
	case m.Seq <= last:
		return nil // duplicate
	case m.Seq == last+1:
		s.book.ApplyDelta(m.Seq, m.Bids, m.Asks)
		s.topic.SendCh() <- BookEvent{Kind: KindDelta, Seq: m.Seq, Book: s.book}
		return nil
	}

	// Sequence gap. Invalidate the mirror and ask for a fresh snapshot.
	s.book.MarkStale()
	s.topic.SendCh() <- BookEvent{Kind: KindResync, Seq: last, Book: s.book}
	return c.writeJSON(conn, &Message{Type: MsgSubscribe, Channel: bookChannel(marketIndex)})
}

func (c *Client) handleAccountMsg(conn *ws.Conn, accountIndex int64, m *Message) error {
	c.mu.Lock()
	s, ok := c.accounts[accountIndex]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	if m.Account == nil {
		return fmt.Errorf("account message without account payload")
	}

	if m.Type == MsgSnapshot {
		s.account.ApplySnapshot(m.Seq, m.Account)
		s.topic.SendCh() <- AccountEvent{Kind: KindSnapshot, Seq: m.Seq, Account: s.account}
		return nil
	}

	if s.account.Stale() {
		return nil
	}
	last := s.account.Seq()
	switch {
	case m.Seq <= last:
		return nil
	case m.Seq == last+1:
		s.account.ApplyDelta(m.Seq, m.Account)
		s.topic.SendCh() <- AccountEvent{Kind: KindDelta, Seq: m.Seq, Account: s.account}
		return nil
	}

	s.account.MarkStale()
	s.topic.SendCh() <- AccountEvent{Kind: KindResync, Seq: last, Account: s.account}
	return c.writeJSON(conn, &Message{Type: MsgSubscribe, Channel: accountChannel(accountIndex)})
}
