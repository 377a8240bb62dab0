// Copyright (c) 2025 BVK Chaitanya

// Package txstore persists signed transaction submissions in the
// datastore, keyed by digest. Records survive restarts so ambiguous
// submissions can be reconciled later.
package txstore

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/bvkgo/kv"

	"github.com/bvk/l2trade/gobs"
	"github.com/bvk/l2trade/kvutil"
	"github.com/bvk/l2trade/txclient"
)

// Keyspace is the datastore prefix for transaction records.
const Keyspace = "/txs"

type Store struct {
	db kv.Database
}

func New(db kv.Database) *Store {
	return &Store{db: db}
}

func txKey(digest string) string {
	return path.Join(Keyspace, digest)
}

// SaveTx writes a submission record at its digest key, replacing any
// earlier record for the same digest.
func (s *Store) SaveTx(ctx context.Context, r *gobs.TxRecord) error {
	if r.Digest == "" {
		return os.ErrInvalid
	}
	return kvutil.SetDB(ctx, s.db, txKey(r.Digest), r)
}

// UpdateStatus rewrites the status fields of an existing record.
func (s *Store) UpdateStatus(ctx context.Context, digest, status, reason string) error {
	return kv.WithReadWriter(ctx, s.db, func(ctx context.Context, rw kv.ReadWriter) error {
		r, err := kvutil.Get[gobs.TxRecord](ctx, rw, txKey(digest))
		if err != nil {
			return fmt.Errorf("no record for digest %q: %w", digest, err)
		}
		r.Status = status
		r.Reason = reason
		return kvutil.Set(ctx, rw, txKey(digest), r)
	})
}

// GetTx returns the record for a digest.
func (s *Store) GetTx(ctx context.Context, digest string) (*gobs.TxRecord, error) {
	return kvutil.GetDB[gobs.TxRecord](ctx, s.db, txKey(digest))
}

// ScanTxs invokes fn for every stored record.
func (s *Store) ScanTxs(ctx context.Context, fn func(*gobs.TxRecord) error) error {
	begin, end := kvutil.PathRange(Keyspace)
	return kvutil.AscendDB(ctx, s.db, begin, end, func(ctx context.Context, r kv.Reader, k string, v *gobs.TxRecord) error {
		return fn(v)
	})
}

// Unresolved returns records whose final outcome is still unknown. These
// are the candidates for status reconciliation after a restart.
func (s *Store) Unresolved(ctx context.Context) ([]*gobs.TxRecord, error) {
	var rs []*gobs.TxRecord
	err := s.ScanTxs(ctx, func(r *gobs.TxRecord) error {
		if r.Status == txclient.StatusPending || r.Status == txclient.StatusAmbiguous {
			rs = append(rs, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}
