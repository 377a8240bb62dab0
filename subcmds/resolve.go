// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/visvasity/cli"

	"github.com/bvk/l2trade/subcmds/cmdutil"
	"github.com/bvk/l2trade/txclient"
	"github.com/bvk/l2trade/txstore"
)

type Resolve struct {
	cmdutil.ClientFlags
	cmdutil.DBFlags
}

func (c *Resolve) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("resolve", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	c.DBFlags.SetFlags(fset)
	return "resolve", fset, cli.CmdFunc(c.run)
}

func (c *Resolve) Purpose() string {
	return "Reconciles unresolved submissions against the venue"
}

func (c *Resolve) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	defer closer()
	store := txstore.New(db)

	client, _, clientCloser, err := c.ClientFlags.TxClient(&txclient.Options{Store: store})
	if err != nil {
		return err
	}
	defer clientCloser()

	rs, err := store.Unresolved(ctx)
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	if len(rs) == 0 {
		fmt.Fprintln(stdout, "no unresolved submissions")
		return nil
	}
	for _, r := range rs {
		st, err := client.Resolve(ctx, r.Digest)
		if err != nil {
			return fmt.Errorf("could not resolve %s: %w", r.Digest, err)
		}
		fmt.Fprintf(stdout, "%s: %s -> %s\n", r.Digest, r.Status, st.Status)
	}
	return nil
}
