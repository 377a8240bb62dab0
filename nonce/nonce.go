// Copyright (c) 2025 BVK Chaitanya

// Package nonce allocates strictly increasing transaction nonces per
// (account index, signing-key index) pair.
package nonce

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable is returned by Next when the counter is not primed and no
// fetcher is configured.
var ErrUnavailable = errors.New("nonce is unavailable")

// ErrConflict marks a server-reported stale-nonce rejection. The holder of
// the conflicting transaction must invalidate the counter, refetch, and
// re-sign with a fresh nonce; the old signature is bound to the old nonce
// and can never be reused.
var ErrConflict = errors.New("nonce conflict")

// FetchFunc fetches the next unused nonce for an account and signing-key
// index from the venue.
type FetchFunc func(ctx context.Context, account int64, keyIndex uint8) (int64, error)

type counterKey struct {
	account  int64
	keyIndex uint8
}

type counter struct {
	// mu serializes allocation for one (account, key) pair, including the
	// one-time initial fetch. Allocation is the only mutation point.
	mu sync.Mutex

	primed bool
	next   int64
}

// Manager hands out nonces. In managed mode (non-nil fetch) the initial
// value for each pair is fetched from the venue exactly once and later
// calls increment a local counter. Without a fetcher, only pairs primed
// through Seed can allocate; everything else fails with ErrUnavailable.
type Manager struct {
	fetch FetchFunc

	mu       sync.Mutex
	counters map[counterKey]*counter
}

func NewManager(fetch FetchFunc) *Manager {
	return &Manager{
		fetch:    fetch,
		counters: make(map[counterKey]*counter),
	}
}

func (m *Manager) counter(account int64, keyIndex uint8) *counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := counterKey{account: account, keyIndex: keyIndex}
	c, ok := m.counters[k]
	if !ok {
		c = &counter{}
		m.counters[k] = c
	}
	return c
}

// Next allocates the next nonce for the pair. Concurrent calls for the same
// pair never return the same value and form a contiguous sequence in call
// order.
func (m *Manager) Next(ctx context.Context, account int64, keyIndex uint8) (int64, error) {
	c := m.counter(account, keyIndex)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.primed {
		if m.fetch == nil {
			return 0, fmt.Errorf("no nonce fetcher for account %d key %d: %w", account, keyIndex, ErrUnavailable)
		}
		v, err := m.fetch(ctx, account, keyIndex)
		if err != nil {
			return 0, fmt.Errorf("could not fetch initial nonce: %w", err)
		}
		c.next = v
		c.primed = true
	}

	v := c.next
	c.next++
	return v, nil
}

// Seed primes the counter for a pair with an explicit starting nonce,
// replacing any cached value.
func (m *Manager) Seed(account int64, keyIndex uint8, nonce int64) {
	c := m.counter(account, keyIndex)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = nonce
	c.primed = true
}

// Invalidate drops the cached counter for a pair, forcing the next
// allocation to refetch. Callers invoke this after a server-reported nonce
// conflict.
func (m *Manager) Invalidate(account int64, keyIndex uint8) {
	c := m.counter(account, keyIndex)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primed = false
	c.next = 0
}
