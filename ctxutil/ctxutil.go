// Copyright (c) 2025 BVK Chaitanya

// Package ctxutil implements context-aware sleep, retry and goroutine
// lifetime helpers.
package ctxutil

import (
	"context"
	"os"
	"sync"
	"time"
)

// Sleep blocks the caller for the given duration. Returns early if the
// input context is canceled.
func Sleep(ctx context.Context, d time.Duration) {
	sctx, scancel := context.WithTimeout(ctx, d)
	<-sctx.Done()
	scancel()
}

// Backoff produces an exponentially growing wait interval capped at Max.
// The zero value starts at 100ms and caps at 30s.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration

	current time.Duration
}

func (b *Backoff) next() time.Duration {
	if b.Initial == 0 {
		b.Initial = 100 * time.Millisecond
	}
	if b.Max == 0 {
		b.Max = 30 * time.Second
	}
	if b.current == 0 {
		b.current = b.Initial
		return b.current
	}
	b.current *= 2
	if b.current > b.Max {
		b.current = b.Max
	}
	return b.current
}

// Reset restarts the interval sequence from Initial.
func (b *Backoff) Reset() {
	b.current = 0
}

// Sleep waits for the next backoff interval or until the context is
// canceled.
func (b *Backoff) Sleep(ctx context.Context) {
	Sleep(ctx, b.next())
}

// Retry runs the input function up to n times with exponential backoff
// between attempts. Returns nil on the first success, the last error after
// n failures, or the context cause if the context expires first.
func Retry(ctx context.Context, n int, f func() error) (err error) {
	b := Backoff{}
	for i := 0; i < n; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i+1 < n {
			b.Sleep(ctx)
		}
		if cause := context.Cause(ctx); cause != nil {
			return cause
		}
	}
	return err
}

// CloseGroup tracks a set of goroutines sharing one cancellation context.
type CloseGroup struct {
	closeCtx  context.Context
	causeFunc context.CancelCauseFunc

	wg sync.WaitGroup

	once sync.Once
}

func (cg *CloseGroup) init() {
	cg.closeCtx, cg.causeFunc = context.WithCancelCause(context.Background())
}

// Close cancels the group context and waits for all goroutines to finish.
func (cg *CloseGroup) Close() {
	cg.once.Do(cg.init)
	cg.causeFunc(os.ErrClosed)
	cg.wg.Wait()
}

// Context returns the group's cancellation context.
func (cg *CloseGroup) Context() context.Context {
	cg.once.Do(cg.init)
	return cg.closeCtx
}

// Go runs f in a goroutine tracked by the group.
func (cg *CloseGroup) Go(f func(ctx context.Context)) {
	cg.once.Do(cg.init)

	cg.wg.Add(1)
	go func() {
		f(cg.closeCtx)
		cg.wg.Done()
	}()
}
