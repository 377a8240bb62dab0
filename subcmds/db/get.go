// Copyright (c) 2025 BVK Chaitanya

// Package db implements subcommands to inspect and manage the datastore.
package db

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/bvkgo/kv"
	"github.com/visvasity/cli"

	"github.com/bvk/l2trade/gobs"
	"github.com/bvk/l2trade/subcmds/cmdutil"
)

type Get struct {
	cmdutil.DBFlags

	valueType string
}

func (c *Get) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.valueType, "value-type", "", "gob type name for the value")
	return "get", fset, cli.CmdFunc(c.run)
}

func (c *Get) Purpose() string {
	return "Prints the value of a key in the database"
}

func (c *Get) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (key) argument")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	stdout := cli.Stdout(ctx)
	get := func(ctx context.Context, r kv.Reader) error {
		v, err := r.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if c.valueType == "" {
			data, err := io.ReadAll(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%x\n", data)
			return nil
		}

		value, err := gobs.NewByTypename(c.valueType)
		if err != nil {
			return fmt.Errorf("invalid value-type %q: %w", c.valueType, err)
		}
		if err := gob.NewDecoder(v).Decode(value); err != nil {
			return fmt.Errorf("could not gob-decode the value: %w", err)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\n", data)
		return nil
	}
	return kv.WithReader(ctx, db, get)
}
