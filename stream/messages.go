// Copyright (c) 2025 BVK Chaitanya

package stream

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bvk/l2trade/book"
)

// Wire message types.
const (
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgSnapshot    = "snapshot"
	MsgUpdate      = "update"
	MsgError       = "error"
	MsgPing        = "ping"
	MsgPong        = "pong"
)

// Message is the JSON frame exchanged with the venue websocket. Snapshot
// and update frames carry either book levels or an account diff depending
// on the channel.
type Message struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Seq     int64  `json:"seq,omitempty"`

	Bids []book.Level `json:"bids,omitempty"`
	Asks []book.Level `json:"asks,omitempty"`

	Account *book.AccountUpdate `json:"account,omitempty"`

	Message string `json:"message,omitempty"`
}

func bookChannel(marketIndex uint8) string {
	return fmt.Sprintf("order_book/%d", marketIndex)
}

func accountChannel(accountIndex int64) string {
	return fmt.Sprintf("account/%d", accountIndex)
}

func parseChannel(channel string) (kind string, id int64, err error) {
	kind, rest, ok := strings.Cut(channel, "/")
	if !ok {
		return "", 0, fmt.Errorf("invalid channel %q", channel)
	}
	id, err = strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid channel %q: %w", channel, err)
	}
	return kind, id, nil
}
