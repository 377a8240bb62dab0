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

type Transfer struct {
	cmdutil.ClientFlags
	cmdutil.DBFlags

	toAccount int64
	amount    int64
	fee       int64
	memo      string

	withdraw bool
}

func (c *Transfer) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("transfer", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	c.DBFlags.SetFlags(fset)
	fset.Int64Var(&c.toAccount, "to-account", -1, "destination account index")
	fset.Int64Var(&c.amount, "amount", 0, "amount in USDC ticks (1 USDC = 1e6 ticks)")
	fset.Int64Var(&c.fee, "fee", 0, "transfer fee in USDC ticks")
	fset.StringVar(&c.memo, "memo", "", "optional 32-byte memo")
	fset.BoolVar(&c.withdraw, "withdraw", false, "withdraws to the L1 wallet instead")
	return "transfer", fset, cli.CmdFunc(c.run)
}

func (c *Transfer) Purpose() string {
	return "Transfers USDC to another account or withdraws to L1"
}

func (c *Transfer) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	var t tx.Transaction
	if c.withdraw {
		t = &tx.Withdraw{USDCAmount: c.amount}
	} else {
		if c.toAccount < 0 {
			return fmt.Errorf("to-account is required")
		}
		var memo []byte
		if c.memo != "" {
			memo = make([]byte, tx.MemoLength)
			if len(c.memo) > tx.MemoLength {
				return fmt.Errorf("memo cannot be longer than %d bytes", tx.MemoLength)
			}
			copy(memo, c.memo)
		}
		t = &tx.Transfer{
			ToAccountIndex: c.toAccount,
			USDCAmount:     c.amount,
			Fee:            c.fee,
			Memo:           memo,
		}
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
