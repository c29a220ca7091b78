// Package batch implements the stack-only batch accumulator (C5): it
// folds up to txn.MaxBatchSize transactions into a single txn.Batch and
// flushes it onto the output ring on whichever trigger fires first,
// size or deadline.
package batch

import (
	"errors"

	"github.com/hftlab/txpipe/internal/cycle"
	"github.com/hftlab/txpipe/internal/ring"
	"github.com/hftlab/txpipe/internal/txn"
)

// deadlineNs is the batch's second flush trigger, 100µs (§4.4). Each
// deadline check converts the elapsed tick count to nanoseconds with
// cycle.TicksToNs and compares it against this value.
const deadlineNs = 100_000

// ErrFlushFailed is returned by Push/ForceFlush when the output ring
// rejects the flushed batch (it was full). The accumulator keeps its
// contents; the caller decides whether to retry or drop (§4.4).
var ErrFlushFailed = errors.New("batch: flush failed, output ring full")

// Accumulator is the fixed 16-slot stack buffer a single T2 worker
// owns. It is not safe for concurrent use: exactly one goroutine may
// call Push/Tick/ForceFlush, mirroring the single-consumer discipline
// of the ring it drains and the ring it flushes onto.
type Accumulator struct {
	buf        [txn.MaxBatchSize]txn.Transaction
	count      uint8
	firstTsNs  uint64 // ingress_ts_ns of the first slot; recorded but not read by flush
	firstTicks uint64 // cycle.Read() at insertion of the first slot, for the deadline trigger
}

// Push inserts t into the accumulator. If inserting fills the 16th
// slot, it flushes immediately (size trigger). Otherwise it checks the
// deadline trigger the same way Tick does. flushed reports whether a
// batch was pushed onto out (a trigger fired and the flush succeeded);
// err is ErrFlushFailed only if a trigger fired
// and the flush onto out failed, in which case t remains buffered (it
// was already copied in, and flush() only clears the count on success).
func (a *Accumulator) Push(t txn.Transaction, out *ring.Ring[txn.Batch]) (flushed bool, err error) {
	if a.count == 0 {
		a.firstTsNs = t.IngressTsNs
		a.firstTicks = cycle.Read()
	}
	a.buf[a.count] = t
	a.count++

	if a.count == txn.MaxBatchSize || a.deadlineElapsed() {
		err := a.flush(out)
		return err == nil, err
	}
	return false, nil
}

// Tick checks the deadline trigger without inserting anything. T2
// calls this whenever its input ring is empty, so a slow trickle of
// transactions still flushes within the deadline instead of waiting
// indefinitely for a 16th arrival (§4.4, §4.7).
func (a *Accumulator) Tick(out *ring.Ring[txn.Batch]) (flushed bool, err error) {
	if a.count == 0 || !a.deadlineElapsed() {
		return false, nil
	}
	err = a.flush(out)
	return err == nil, err
}

// ForceFlush flushes whatever is currently buffered regardless of
// trigger state, unconditionally. Used by the orchestrator's shutdown
// drain (§4.7 step 3) so no partially-filled batch is lost.
func (a *Accumulator) ForceFlush(out *ring.Ring[txn.Batch]) error {
	if a.count == 0 {
		return nil
	}
	return a.flush(out)
}

// Count returns the number of transactions currently buffered.
func (a *Accumulator) Count() int {
	return int(a.count)
}

func (a *Accumulator) deadlineElapsed() bool {
	elapsedTicks := cycle.Read() - a.firstTicks
	return cycle.TicksToNs(elapsedTicks) >= deadlineNs
}

func (a *Accumulator) flush(out *ring.Ring[txn.Batch]) error {
	var b txn.Batch
	copy(b.Txns[:a.count], a.buf[:a.count])
	b.Count = a.count
	b.FlushedTsNs = cycle.NowNs()

	if err := out.Push(b); err != nil {
		return ErrFlushFailed
	}
	a.count = 0
	return nil
}
