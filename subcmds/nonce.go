// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/visvasity/cli"

	"github.com/bvk/l2trade/subcmds/cmdutil"
)

type Nonce struct {
	cmdutil.ClientFlags
}

func (c *Nonce) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("nonce", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "nonce", fset, cli.CmdFunc(c.run)
}

func (c *Nonce) Purpose() string {
	return "Prints the next unused nonce for the signing key"
}

func (c *Nonce) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	rc, creds, err := c.ClientFlags.RestClient()
	if err != nil {
		return err
	}
	n, err := rc.NextNonce(ctx, creds.AccountIndex, creds.APIKeyIndex)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "%d\n", n)
	return nil
}
