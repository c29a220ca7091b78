// Package ring implements the bounded single-producer/single-consumer
// queue (C3) that links the pipeline's four stages. Exactly one
// goroutine may call Push for a given Ring and exactly one goroutine
// may call Pop; the padded, independently-owned head and tail cursors
// are what make that contract lock-free.
package ring

import (
	"fmt"
	"sync/atomic"
)

// cacheLinePad is sized to separate the producer's cursor from the
// consumer's cursor on any common architecture (64-byte lines on
// amd64/arm64), so the two sides never invalidate each other's cache
// line on every push/pop.
type cacheLinePad [64 - 8]byte

// Ring is a bounded SPSC queue over a fixed power-of-two slot array.
// The zero value is not usable; construct with New.
type Ring[T any] struct {
	mask uint64
	buf  []T

	_    cacheLinePad
	head uint64 // producer-owned write cursor
	_    cacheLinePad
	tail uint64 // consumer-owned read cursor
	_    cacheLinePad
}

// New creates a Ring with capacity n, which must be a power of two
// (the data model fixes the tested sizes at 1024, 4096, and 8192).
func New[T any](n int) *Ring[T] {
	if n <= 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("ring: capacity %d is not a power of two", n))
	}
	return &Ring[T]{
		mask: uint64(n - 1),
		buf:  make([]T, n),
	}
}

// Cap returns the ring's fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// ErrFull is returned by Push when the ring has no free slot. The
// caller retains ownership of the value it tried to push.
var ErrFull = fmt.Errorf("ring: full")

// Push enqueues v. It must only ever be called by the ring's single
// producer goroutine. Returns ErrFull without blocking if the ring is
// at capacity; the pipeline's workers treat that as a transient,
// counted condition (§7), never a fatal one.
func (r *Ring[T]) Push(v T) error {
	head := r.head // producer-private, no atomic load needed
	tail := atomic.LoadUint64(&r.tail)
	if head-tail == uint64(len(r.buf)) {
		return ErrFull
	}
	r.buf[head&r.mask] = v
	// The release store publishes both the slot write above and the
	// advanced index; Pop's acquire load of head synchronizes-with
	// this store, so the consumer never observes the new index before
	// the slot contents it points at.
	atomic.StoreUint64(&r.head, head+1)
	return nil
}

// Pop dequeues the oldest pushed value. It must only ever be called by
// the ring's single consumer goroutine. ok is false if the ring is
// empty.
func (r *Ring[T]) Pop() (v T, ok bool) {
	tail := r.tail // consumer-private
	head := atomic.LoadUint64(&r.head)
	if head == tail {
		return v, false
	}
	v = r.buf[tail&r.mask]
	atomic.StoreUint64(&r.tail, tail+1)
	return v, true
}

// Len returns a racy snapshot of the number of items currently queued.
// Safe to call from either endpoint or a third-party observer; the
// value may be stale by the time the caller acts on it.
func (r *Ring[T]) Len() int {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	return int(head - tail)
}

// Drain pops every remaining item and invokes fn for each, in FIFO
// order. Intended for the orchestrator's single-threaded shutdown
// drain (§4.7), once both the producer and consumer goroutines have
// stopped running concurrently with it.
func (r *Ring[T]) Drain(fn func(T)) int {
	n := 0
	for {
		v, ok := r.Pop()
		if !ok {
			return n
		}
		fn(v)
		n++
	}
}
