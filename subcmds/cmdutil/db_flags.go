// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"

	"github.com/bvk/l2trade/kvutil"
	"github.com/bvk/l2trade/txclient"
	"github.com/bvk/l2trade/txstore"
)

type DBFlags struct {
	dataDir string

	fromBackup string

	backupBefore string
	backupAfter  string
}

func (f *DBFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", "", "path to the database directory")
	fset.StringVar(&f.fromBackup, "from-backup", "", "path to a database backup file")
	fset.StringVar(&f.backupBefore, "backup-before", "", "path to a file to receive db backup before cmd is run")
	fset.StringVar(&f.backupAfter, "backup-after", "", "path to a file to receive db backup after cmd is run")
}

// Configured reports whether a datastore location was given through
// flags or the environment.
func (f *DBFlags) Configured() bool {
	return len(f.dataDir) != 0 || len(f.fromBackup) != 0 || len(os.Getenv("L2TRADE_DATA_DIR")) != 0
}

// TxStore opens the transaction record store when a datastore location is
// configured. Without one, submissions proceed unrecorded and the store
// is nil.
func (f *DBFlags) TxStore(ctx context.Context) (txclient.Store, func(), error) {
	if !f.Configured() {
		return nil, func() {}, nil
	}
	db, closer, err := f.GetDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}
	return txstore.New(db), closer, nil
}

func (f *DBFlags) dbCloser(db kv.Database, bdb *badger.DB) func() {
	return func() {
		if len(f.backupAfter) != 0 {
			if err := kvutil.BackupDB(context.Background(), db, f.backupAfter); err != nil {
				log.Printf("could not take db backup after it is used (ignored): %v", err)
			}
		}
		if bdb != nil {
			bdb.Close()
		}
	}
}

func isGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

// GetDatabase opens the datastore. A backup file is loaded into an
// in-memory database; otherwise the badger directory is opened directly.
func (f *DBFlags) GetDatabase(ctx context.Context) (db kv.Database, closer func(), status error) {
	defer func() {
		if status == nil && len(f.backupBefore) != 0 {
			if err := kvutil.BackupDB(ctx, db, f.backupBefore); err != nil {
				log.Printf("could not take a db backup before it is used: %v", err)
				db, closer, status = nil, nil, err
			}
		}
	}()

	if len(f.fromBackup) != 0 {
		fp, err := os.Open(f.fromBackup)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open file %q: %w", f.fromBackup, err)
		}
		defer fp.Close()

		mdb := kvmemdb.New()
		restore := func(ctx context.Context, rw kv.ReadWriter) error {
			return kvutil.Import(ctx, bufio.NewReader(fp), rw)
		}
		if err := kv.WithReadWriter(ctx, mdb, restore); err != nil {
			return nil, nil, fmt.Errorf("could not restore in-memory db from backup: %w", err)
		}
		return mdb, f.dbCloser(mdb, nil), nil
	}

	if len(f.dataDir) == 0 {
		f.dataDir = os.Getenv("L2TRADE_DATA_DIR")
	}
	if len(f.dataDir) == 0 {
		return nil, nil, fmt.Errorf("data directory is required")
	}

	bopts := badger.DefaultOptions(f.dataDir)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open the database: %w", err)
	}
	db = kvbadger.New(bdb, isGoodKey)
	return db, f.dbCloser(db, bdb), nil
}
