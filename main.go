// Copyright (c) 2025 BVK Chaitanya

package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/visvasity/cli"
	"github.com/visvasity/sglog"

	"github.com/bvk/l2trade/subcmds"
	"github.com/bvk/l2trade/subcmds/db"
)

func main() {
	// Credentials may come from a .env file in the working directory.
	_ = godotenv.Load()

	if dir := os.Getenv("L2TRADE_LOG_DIR"); len(dir) != 0 {
		backend := sglog.NewBackend(&sglog.Options{LogDirs: []string{dir}})
		defer backend.Close()
		slog.SetDefault(slog.New(backend.Handler()))
	}

	dbCmds := []cli.Command{
		new(db.Get),
		new(db.Delete),
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	cmds := []cli.Command{
		new(subcmds.Order),
		new(subcmds.Cancel),
		new(subcmds.Transfer),
		new(subcmds.Leverage),
		new(subcmds.Nonce),
		new(subcmds.Status),
		new(subcmds.Resolve),
		new(subcmds.Watch),
		new(subcmds.IDGen),
		cli.NewGroup("db", "View/update database directly", dbCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
