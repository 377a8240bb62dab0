// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/visvasity/cli"

	"github.com/bvk/l2trade/subcmds/cmdutil"
	"github.com/bvk/l2trade/tx"
	"github.com/bvk/l2trade/txclient"
)

type Leverage struct {
	cmdutil.ClientFlags
	cmdutil.DBFlags

	market   uint
	leverage uint
	isolated bool
}

func (c *Leverage) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("leverage", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	c.DBFlags.SetFlags(fset)
	fset.UintVar(&c.market, "market", 0, "market index")
	fset.UintVar(&c.leverage, "leverage", 1, "whole number leverage multiplier")
	fset.BoolVar(&c.isolated, "isolated", false, "uses isolated margin instead of cross")
	return "leverage", fset, cli.CmdFunc(c.run)
}

func (c *Leverage) Purpose() string {
	return "Updates leverage and margin mode for a market"
}

func (c *Leverage) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	mode := tx.MarginModeCross
	if c.isolated {
		mode = tx.MarginModeIsolated
	}
	t, err := txclient.LeverageUpdate(uint8(c.market), uint16(c.leverage), mode)
	if err != nil {
		return err
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
