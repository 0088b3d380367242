package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"speakersite/internal/logger"
)

func newTestDispatcher(t *testing.T, workers, queue int) *Dispatcher {
	t.Helper()
	d := NewDispatcher(DispatcherConfig{Workers: workers, QueueSize: queue}, logger.Discard())
	t.Cleanup(d.Stop)
	return d
}

func TestDispatcherSerializesSameKey(t *testing.T) {
	d := newTestDispatcher(t, 4, 64)

	var (
		mu      sync.Mutex
		order   []int
		active  int32
		maxSeen int32
	)
	var results []<-chan error
	for i := 0; i < 20; i++ {
		i := i
		done, err := d.SubmitAsync(context.Background(), 7, func(ctx context.Context) error {
			n := atomic.AddInt32(&active, 1)
			for {
				prev := atomic.LoadInt32(&maxSeen)
				if n <= prev || atomic.CompareAndSwapInt32(&maxSeen, prev, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			atomic.AddInt32(&active, -1)
			return nil
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		results = append(results, done)
	}
	for i, done := range results {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("job %d: %v", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("job %d timed out", i)
		}
	}

	if seen := atomic.LoadInt32(&maxSeen); seen != 1 {
		t.Fatalf("expected jobs of one key to run alone, saw %d concurrent", seen)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("jobs ran out of order: %v", order)
		}
	}
}

func TestDispatcherRunsDifferentKeysInParallel(t *testing.T) {
	d := newTestDispatcher(t, 2, 8)

	var barrier sync.WaitGroup
	barrier.Add(2)
	meet := func(ctx context.Context) error {
		barrier.Done()
		waited := make(chan struct{})
		go func() {
			barrier.Wait()
			close(waited)
		}()
		select {
		case <-waited:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("peer job never started")
		}
	}

	first, err := d.SubmitAsync(context.Background(), 1, meet)
	if err != nil {
		t.Fatalf("submit key 1: %v", err)
	}
	second, err := d.SubmitAsync(context.Background(), 2, meet)
	if err != nil {
		t.Fatalf("submit key 2: %v", err)
	}
	if err := <-first; err != nil {
		t.Fatalf("key 1: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("key 2: %v", err)
	}
}

func TestDispatcherRejectsWhenFull(t *testing.T) {
	d := newTestDispatcher(t, 1, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	blocking, err := d.SubmitAsync(context.Background(), 1, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("submit blocking job: %v", err)
	}
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("blocking job never started")
	}

	queued, err := d.SubmitAsync(context.Background(), 1, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("submit queued job: %v", err)
	}
	if _, err := d.SubmitAsync(context.Background(), 2, func(ctx context.Context) error { return nil }); !errors.Is(err, ErrDispatcherBusy) {
		t.Fatalf("expected ErrDispatcherBusy, got %v", err)
	}

	close(release)
	if err := <-blocking; err != nil {
		t.Fatalf("blocking job: %v", err)
	}
	if err := <-queued; err != nil {
		t.Fatalf("queued job: %v", err)
	}
}

func TestDispatcherSkipsCancelledJobs(t *testing.T) {
	d := newTestDispatcher(t, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Bool
	done, err := d.SubmitAsync(ctx, 3, func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ran.Load() {
		t.Fatalf("cancelled job should not run")
	}
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := newTestDispatcher(t, 1, 4)

	err := d.Submit(context.Background(), 5, func(ctx context.Context) error {
		panic("boom")
	})
	if err == nil {
		t.Fatalf("expected panic to surface as error")
	}
	// the key is released after a panic
	if err := d.Submit(context.Background(), 5, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("follow-up job: %v", err)
	}
}

func TestDispatcherStop(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Workers: 2, QueueSize: 4}, logger.Discard())
	d.Stop()
	d.Stop()
	if err := d.Submit(context.Background(), 1, func(ctx context.Context) error { return nil }); !errors.Is(err, ErrDispatcherStopped) {
		t.Fatalf("expected ErrDispatcherStopped, got %v", err)
	}
}
