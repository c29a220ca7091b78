package ring

import (
	"sync"
	"testing"
)

func TestSimpleRoundTrip(t *testing.T) {
	r := New[int](1024)
	for _, v := range []int{1, 2, 3} {
		if err := r.Push(v); err != nil {
			t.Fatalf("unexpected push error: %v", err)
		}
	}
	for _, want := range []int{1, 2, 3} {
		got, ok := r.Pop()
		if !ok || got != want {
			t.Fatalf("pop = (%v, %v), want (%v, true)", got, ok, want)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Fatal("expected fourth pop to return ok=false")
	}
}

func TestFullReturnsErrFull(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 4; i++ {
		if err := r.Push(i); err != nil {
			t.Fatalf("unexpected push error at %d: %v", i, err)
		}
	}
	if err := r.Push(99); err != ErrFull {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestNewPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-power-of-two capacity")
		}
	}()
	New[int](100)
}

func TestCapacityInvariant(t *testing.T) {
	r := New[int](8)
	for i := 0; i < 8; i++ {
		_ = r.Push(i)
	}
	if got := r.Len(); got != 8 {
		t.Fatalf("Len() = %d, want 8", got)
	}
	r.Pop()
	if got := r.Len(); got != 7 {
		t.Fatalf("Len() after one pop = %d, want 7", got)
	}
}

func TestFIFOUnderConcurrentProducerConsumer(t *testing.T) {
	const n = 200_000
	r := New[int](1024)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for r.Push(i) == ErrFull {
				// spin until the consumer drains a slot
			}
		}
	}()

	got := make([]int, 0, n)
	go func() {
		defer wg.Done()
		for len(got) < n {
			if v, ok := r.Pop(); ok {
				got = append(got, v)
			}
		}
	}()

	wg.Wait()

	for i, v := range got {
		if v != i {
			t.Fatalf("FIFO violation at index %d: got %d, want %d", i, v, i)
		}
	}
}

func TestDrain(t *testing.T) {
	r := New[int](16)
	for i := 0; i < 5; i++ {
		_ = r.Push(i)
	}
	var drained []int
	n := r.Drain(func(v int) { drained = append(drained, v) })
	if n != 5 {
		t.Fatalf("Drain returned %d, want 5", n)
	}
	for i, v := range drained {
		if v != i {
			t.Fatalf("drain order mismatch at %d: got %d", i, v)
		}
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty ring after drain, Len()=%d", r.Len())
	}
}
