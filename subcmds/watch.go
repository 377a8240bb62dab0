// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/visvasity/cli"

	"github.com/bvk/l2trade/stream"
	"github.com/bvk/l2trade/subcmds/cmdutil"
)

type Watch struct {
	cmdutil.ClientFlags

	market  int
	account int64
}

func (c *Watch) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("watch", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.IntVar(&c.market, "market", -1, "market index to watch the order book for")
	fset.Int64Var(&c.account, "account", -1, "account index to watch for balance and order changes")
	return "watch", fset, cli.CmdFunc(c.run)
}

func (c *Watch) Purpose() string {
	return "Prints realtime order book and account updates"
}

func (c *Watch) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if c.market < 0 && c.account < 0 {
		return fmt.Errorf("one of market or account flags is required")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, _, err := c.StreamClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	var bookCh <-chan stream.BookEvent
	if c.market >= 0 {
		if _, err := client.OrderBook(ctx, uint8(c.market)); err != nil {
			return err
		}
		ch, unsub, err := client.BookEvents(uint8(c.market), 100)
		if err != nil {
			return err
		}
		defer unsub()
		bookCh = ch
	}

	var acctCh <-chan stream.AccountEvent
	if c.account >= 0 {
		if _, err := client.AccountState(ctx, c.account); err != nil {
			return err
		}
		ch, unsub, err := client.AccountEvents(c.account, 100)
		if err != nil {
			return err
		}
		defer unsub()
		acctCh = ch
	}

	stdout := cli.Stdout(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-bookCh:
			if !ok {
				return fmt.Errorf("order book channel is closed")
			}
			c.printBook(stdout, &ev)
		case ev, ok := <-acctCh:
			if !ok {
				return fmt.Errorf("account channel is closed")
			}
			c.printAccount(stdout, &ev)
		}
	}
}

func (c *Watch) printBook(w io.Writer, ev *stream.BookEvent) {
	line := fmt.Sprintf("book %d: %s seq=%d", c.market, ev.Kind, ev.Seq)
	if ev.Kind != stream.KindResync {
		if bid, ok := ev.Book.BestBid(); ok {
			line += fmt.Sprintf(" bid=%s/%s", bid.Price.String(), bid.Size.String())
		}
		if ask, ok := ev.Book.BestAsk(); ok {
			line += fmt.Sprintf(" ask=%s/%s", ask.Price.String(), ask.Size.String())
		}
	}
	fmt.Fprintln(w, line)
}

func (c *Watch) printAccount(w io.Writer, ev *stream.AccountEvent) {
	if ev.Kind == stream.KindResync {
		fmt.Fprintf(w, "account %d: %s seq=%d\n", c.account, ev.Kind, ev.Seq)
		return
	}
	fmt.Fprintf(w, "account %d: %s seq=%d collateral=%s positions=%d orders=%d\n",
		c.account, ev.Kind, ev.Seq, ev.Account.Collateral().String(),
		len(ev.Account.Positions()), len(ev.Account.OpenOrders(-1)))
}
