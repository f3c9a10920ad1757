//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"telegram-upi-lookup/internal/infra/logging"
)

func TestPool_RunsTasks(t *testing.T) {
	p := NewPool(2, logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	var n int32
	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		err := p.Submit(func(context.Context) error {
			atomic.AddInt32(&n, 1)
			done <- struct{}{}
			return nil
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	p.Stop()
	if atomic.LoadInt32(&n) != 5 {
		t.Errorf("expected 5 tasks, got %d", n)
	}
}

func TestPool_StopDrainsQueue(t *testing.T) {
	p := NewPool(1, logging.Nop())
	var n int32
	for i := 0; i < 3; i++ {
		_ = p.Submit(func(context.Context) error {
			atomic.AddInt32(&n, 1)
			return nil
		})
	}
	p.Start(context.Background())
	p.Stop()
	if atomic.LoadInt32(&n) != 3 {
		t.Errorf("expected queued tasks to run before stop returns, got %d", n)
	}
	if err := p.Submit(func(context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
	p.Stop() // second stop is a no-op
}

func TestPool_SubmitErrors(t *testing.T) {
	p := NewPool(1, logging.Nop())
	if err := p.Submit(nil); !errors.Is(err, ErrNilTask) {
		t.Errorf("expected ErrNilTask, got %v", err)
	}
	// not started: capacity is workers*4
	for i := 0; i < 4; i++ {
		if err := p.Submit(func(context.Context) error { return nil }); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := p.Submit(func(context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestPool_RecoversPanics(t *testing.T) {
	p := NewPool(1, logging.Nop())
	p.Start(context.Background())
	done := make(chan struct{})
	_ = p.Submit(func(context.Context) error { panic("boom") })
	_ = p.Submit(func(context.Context) error { close(done); return nil })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
	p.Stop()
}

func TestPool_StopDrainsAfterStartContextCancelled(t *testing.T) {
	p := NewPool(2, logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	release := make(chan struct{})
	busy := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		if err := p.Submit(func(context.Context) error {
			busy <- struct{}{}
			<-release
			return nil
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		select {
		case <-busy:
		case <-time.After(2 * time.Second):
			t.Fatal("workers did not pick up the blocking tasks")
		}
	}

	var ran, cancelled int32
	for i := 0; i < 5; i++ {
		if err := p.Submit(func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			if ctx.Err() != nil {
				atomic.AddInt32(&cancelled, 1)
			}
			return nil
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	cancel()
	close(release)
	p.Stop()

	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Errorf("expected all 5 queued tasks to run, got %d", got)
	}
	if got := atomic.LoadInt32(&cancelled); got != 0 {
		t.Errorf("expected tasks to see a live context, %d saw a cancelled one", got)
	}
}
