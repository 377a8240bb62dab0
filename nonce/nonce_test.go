// Copyright (c) 2025 BVK Chaitanya

package nonce

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
)

func TestManualSeed(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)

	if _, err := m.Next(ctx, 1, 0); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("unprimed Next without fetcher: got %v, want ErrUnavailable", err)
	}

	m.Seed(1, 0, 42)
	for want := int64(42); want < 45; want++ {
		v, err := m.Next(ctx, 1, 0)
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Fatalf("got nonce %d, want %d", v, want)
		}
	}
}

func TestManagedFetchOnce(t *testing.T) {
	ctx := context.Background()

	var fetches atomic.Int64
	m := NewManager(func(ctx context.Context, account int64, keyIndex uint8) (int64, error) {
		fetches.Add(1)
		return 100, nil
	})

	for want := int64(100); want < 110; want++ {
		v, err := m.Next(ctx, 7, 2)
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Fatalf("got nonce %d, want %d", v, want)
		}
	}
	if n := fetches.Load(); n != 1 {
		t.Fatalf("fetched %d times, want 1", n)
	}
}

func TestPerPairIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewManager(func(ctx context.Context, account int64, keyIndex uint8) (int64, error) {
		return account * 10, nil
	})

	a, err := m.Next(ctx, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Next(ctx, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a != 10 || b != 20 {
		t.Fatalf("pairs share a counter: got %d and %d", a, b)
	}
}

func TestInvalidateRefetches(t *testing.T) {
	ctx := context.Background()

	next := int64(5)
	m := NewManager(func(ctx context.Context, account int64, keyIndex uint8) (int64, error) {
		return next, nil
	})

	if v, err := m.Next(ctx, 1, 1); err != nil || v != 5 {
		t.Fatalf("got (%d, %v), want (5, nil)", v, err)
	}

	// Server advanced past our cache; a conflict forces a refetch.
	next = 50
	m.Invalidate(1, 1)
	if v, err := m.Next(ctx, 1, 1); err != nil || v != 50 {
		t.Fatalf("after invalidate: got (%d, %v), want (50, nil)", v, err)
	}
}

func TestConcurrentAllocation(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	m.Seed(3, 1, 1000)

	const n = 100
	values := make([]int64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := m.Next(ctx, 3, 1)
			if err != nil {
				t.Error(err)
				return
			}
			values[i] = v
		}(i)
	}
	wg.Wait()

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		if v != 1000+int64(i) {
			t.Fatalf("values are not a contiguous distinct range: index %d has %d", i, v)
		}
	}
}
