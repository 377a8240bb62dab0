// Copyright (c) 2025 BVK Chaitanya

package ctxutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCloseGroup(t *testing.T) {
	var cg CloseGroup

	for i := 0; i < 100; i++ {
		cg.Go(func(ctx context.Context) {
			<-ctx.Done()
		})
	}

	cg.Close()
}

func TestBackoffGrowth(t *testing.T) {
	b := Backoff{Initial: time.Millisecond, Max: 8 * time.Millisecond}
	want := []time.Duration{1, 2, 4, 8, 8}
	for i, w := range want {
		if got := b.next(); got != w*time.Millisecond {
			t.Fatalf("interval %d: got %s, want %s", i, got, w*time.Millisecond)
		}
	}
	b.Reset()
	if got := b.next(); got != time.Millisecond {
		t.Fatalf("after reset: got %s, want %s", got, time.Millisecond)
	}
}

func TestRetryCount(t *testing.T) {
	fail := errors.New("transient")

	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return fail
	})
	if !errors.Is(err, fail) {
		t.Fatalf("got %v, want %v", err, fail)
	}
	if calls != 3 {
		t.Fatalf("got %d calls, want 3", calls)
	}

	calls = 0
	err = Retry(context.Background(), 3, func() error {
		calls++
		if calls < 2 {
			return fail
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("got (%v, %d calls), want success on second call", err, calls)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 100, func() error { return errors.New("always") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
