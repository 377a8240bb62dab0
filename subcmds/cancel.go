// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/visvasity/cli"

	"github.com/bvk/l2trade/subcmds/cmdutil"
	"github.com/bvk/l2trade/tx"
	"github.com/bvk/l2trade/txclient"
)

type Cancel struct {
	cmdutil.ClientFlags
	cmdutil.DBFlags

	market     uint
	orderIndex int64

	all            bool
	scheduleAfter  time.Duration
	abortScheduled bool
}

func (c *Cancel) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("cancel", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	c.DBFlags.SetFlags(fset)
	fset.UintVar(&c.market, "market", 0, "market index of the order")
	fset.Int64Var(&c.orderIndex, "order-index", 0, "server assigned order index to cancel")
	fset.BoolVar(&c.all, "all", false, "cancels every open order on the account")
	fset.DurationVar(&c.scheduleAfter, "schedule-after", 0, "arms a dead-man's-switch cancel-all after this duration")
	fset.BoolVar(&c.abortScheduled, "abort-scheduled", false, "disarms an earlier scheduled cancel-all")
	return "cancel", fset, cli.CmdFunc(c.run)
}

func (c *Cancel) Purpose() string {
	return "Cancels one order or all open orders"
}

func (c *Cancel) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	var t tx.Transaction
	switch {
	case c.abortScheduled:
		t = txclient.AbortScheduledCancel()
	case c.scheduleAfter != 0:
		t = txclient.ScheduledCancelAll(time.Now().Add(c.scheduleAfter).UnixMilli())
	case c.all:
		t = txclient.CancelAll()
	default:
		if c.orderIndex == 0 {
			return fmt.Errorf("one of order-index, all, schedule-after or abort-scheduled is required")
		}
		t = &tx.CancelOrder{MarketIndex: uint8(c.market), OrderIndex: c.orderIndex}
	}

	store, storeCloser, err := c.DBFlags.TxStore(ctx)
	if err != nil {
		return err
	}
	defer storeCloser()

	client, _, closer, err := c.ClientFlags.TxClient(&txclient.Options{Store: store})
	if err != nil {
		return err
	}
	defer closer()

	s, err := client.Send(ctx, t, nil)
	if s != nil {
		fmt.Fprintf(cli.Stdout(ctx), "digest: %s\n", s.DigestHex())
	}
	return err
}
