// ABOUTME: Queue tests
// ABOUTME: Tests ordering, timeouts, cancellation and close semantics
package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 100; i++ {
		q.Push(i)
	}
	if q.Len() != 100 {
		t.Fatalf("expected 100 items, got %d", q.Len())
	}
	for i := 0; i < 100; i++ {
		v, ok := q.TryPop()
		if !ok || v != i {
			t.Fatalf("expected %d, got %d (ok=%v)", i, v, ok)
		}
	}
	if _, ok := q.TryPop(); ok {
		t.Error("expected empty queue")
	}
}

func TestQueuePopTimeout(t *testing.T) {
	q := NewQueue[string]()

	start := time.Now()
	if _, ok := q.PopTimeout(20 * time.Millisecond); ok {
		t.Fatal("expected timeout on empty queue")
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("returned too early: %v", elapsed)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push("hello")
	}()
	v, ok := q.PopTimeout(time.Second)
	if !ok || v != "hello" {
		t.Errorf("expected hello, got %q (ok=%v)", v, ok)
	}
}

func TestQueuePopContext(t *testing.T) {
	q := NewQueue[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Pop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Close()

	if q.Push(2) {
		t.Error("expected push after close to fail")
	}
	if !q.Closed() {
		t.Error("expected closed")
	}

	v, err := q.Pop(context.Background())
	if err != nil || v != 1 {
		t.Fatalf("expected queued item to survive close, got %d, %v", v, err)
	}
	if _, err := q.Pop(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	start := time.Now()
	if _, ok := q.PopTimeout(time.Second); ok {
		t.Error("expected no item")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("PopTimeout should return at once on a closed queue")
	}
}

func TestQueueCloseWakesWaiter(t *testing.T) {
	q := NewQueue[int]()
	errc := make(chan error, 1)
	go func() {
		_, err := q.Pop(context.Background())
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrQueueClosed) {
			t.Errorf("expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Close")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()
	const producers, perProducer = 4, 1000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	got := 0
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for got < producers*perProducer {
		if _, err := q.Pop(ctx); err != nil {
			t.Fatalf("pop failed after %d items: %v", got, err)
		}
		got++
	}
	wg.Wait()
}
