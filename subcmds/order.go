// Copyright (c) 2025 BVK Chaitanya

// Package subcmds implements the command-line subcommands.
package subcmds

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/visvasity/cli"

	"github.com/bvk/l2trade/idgen"
	"github.com/bvk/l2trade/subcmds/cmdutil"
	"github.com/bvk/l2trade/tx"
	"github.com/bvk/l2trade/txclient"
)

type Order struct {
	cmdutil.ClientFlags
	cmdutil.DBFlags

	market   uint
	size     int64
	price    uint64
	ask      bool
	postOnly bool
	taker    bool

	reduceOnly   bool
	triggerPrice uint64

	clientOrderIndex int64
	idSeed           string
	idOffset         uint64

	referencePrice uint64

	expiry time.Duration
}

func (c *Order) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("order", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	c.DBFlags.SetFlags(fset)
	fset.UintVar(&c.market, "market", 0, "market index")
	fset.Int64Var(&c.size, "size", 0, "order size in base amount ticks")
	fset.Uint64Var(&c.price, "price", 0, "limit price in price ticks (worst price for taker orders)")
	fset.BoolVar(&c.ask, "ask", false, "places a sell instead of a buy")
	fset.BoolVar(&c.postOnly, "post-only", false, "rejects the order if it would take liquidity")
	fset.BoolVar(&c.taker, "taker", false, "places an immediate-or-cancel market order")
	fset.BoolVar(&c.reduceOnly, "reduce-only", false, "order can only reduce the position")
	fset.Uint64Var(&c.triggerPrice, "trigger-price", 0, "makes the order a stop-loss/take-profit at this price")
	fset.Int64Var(&c.clientOrderIndex, "client-order-index", 0, "client chosen order id (default: derived from id-seed)")
	fset.StringVar(&c.idSeed, "id-seed", "", "seed string for deterministic client order ids")
	fset.Uint64Var(&c.idOffset, "id-offset", 0, "offset into the id-seed sequence")
	fset.Uint64Var(&c.referencePrice, "reference-price", 0, "reference price for the max-price-deviation-bps check")
	fset.DurationVar(&c.expiry, "expiry", 0, "transaction expiry (default: venue maximum)")
	return "order", fset, cli.CmdFunc(c.run)
}

func (c *Order) Purpose() string {
	return "Places an order on the venue"
}

func (c *Order) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if c.market > uint(tx.MaxMarketIndex) {
		return fmt.Errorf("invalid market index %d", c.market)
	}

	coi := c.clientOrderIndex
	if coi == 0 {
		if c.idSeed == "" {
			return fmt.Errorf("one of client-order-index or id-seed is required")
		}
		coi = idgen.New(c.idSeed, c.idOffset).NextID()
	}

	var order *tx.CreateOrder
	switch {
	case c.taker:
		order = txclient.MarketOrder(uint8(c.market), coi, c.size, uint32(c.price), c.ask)
	case c.postOnly:
		order = txclient.PostOnlyOrder(uint8(c.market), coi, c.size, uint32(c.price), c.ask)
	default:
		order = txclient.LimitOrder(uint8(c.market), coi, c.size, uint32(c.price), c.ask)
	}
	if c.reduceOnly {
		order.Order.ReduceOnly = true
	}
	if c.triggerPrice != 0 {
		if c.taker {
			order.Order.OrderType = tx.OrderTypeStopLoss
		} else {
			order.Order.OrderType = tx.OrderTypeStopLossLimit
		}
		order.Order.TriggerPrice = uint32(c.triggerPrice)
	}

	store, storeCloser, err := c.DBFlags.TxStore(ctx)
	if err != nil {
		return err
	}
	defer storeCloser()

	copts := &txclient.Options{Store: store}
	if c.referencePrice != 0 {
		ref := uint32(c.referencePrice)
		copts.Risk.ReferencePrice = func(uint8) (uint32, bool) { return ref, true }
	}
	client, _, closer, err := c.ClientFlags.TxClient(copts)
	if err != nil {
		return err
	}
	defer closer()

	topts := new(txclient.TransactOpts)
	if c.expiry != 0 {
		topts.ExpiredAt = time.Now().Add(c.expiry).UnixMilli()
	}

	// The digest is printed even when the submission outcome is unknown;
	// it is the only handle for a later status query.
	s, err := client.Send(ctx, order, topts)
	if s != nil {
		stdout := cli.Stdout(ctx)
		fmt.Fprintf(stdout, "client-order-index: %d\n", coi)
		fmt.Fprintf(stdout, "nonce: %d\n", s.Envelope.Nonce)
		fmt.Fprintf(stdout, "digest: %s\n", s.DigestHex())
	}
	return err
}
