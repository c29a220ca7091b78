package pipeline

import (
	"math/rand/v2"
	"time"

	"github.com/agilira/iris"

	"github.com/hftlab/txpipe/internal/backoff"
	"github.com/hftlab/txpipe/internal/cycle"
	"github.com/hftlab/txpipe/internal/txn"
)

// runT0Ingress is the ingress worker (§4.7 T0, core 0): it drives the
// synthetic source, pacing arrivals by the source's exponential
// inter-arrival draw, and pushes each generated txn onto R1. A Full
// ring is a counted drop, never fatal.
func (o *Orchestrator) runT0Ingress() {
	defer o.wg.Done()
	corePin(o, 0, "T0-ingress")

	for !o.shuttingDown() {
		gap := o.src.NextInterArrival()
		if gap > 0 {
			time.Sleep(gap)
		}

		t := o.src.Next()
		o.stats.incIngressGenerated()

		if err := o.r1.Push(t); err != nil {
			o.stats.incIngressDropped()
			continue
		}
		o.stats.incIngressPushed()
		o.stats.addInFlight(1)
	}
}

// runT1BookFold is the book-fold worker (§4.7 T1, core 1): pop from
// R1, fold into the book signed by side, then forward the same txn
// onto R2. A Full R2 drops the txn (counted); the price update to the
// book already happened and is not rolled back (§4.7: "the txn is
// dropped and counted").
func (o *Orchestrator) runT1BookFold() {
	defer o.wg.Done()
	corePin(o, 1, "T1-book-fold")

	var bo backoff.Backoff
	for !o.shuttingDown() {
		t, ok := o.r1.Pop()
		if !ok {
			bo.Wait()
			continue
		}
		bo.Reset()

		o.foldIntoBook(t)

		if err := o.r2.Push(t); err != nil {
			o.stats.incBookFoldDropped()
			o.stats.addInFlight(-1)
		}
	}
}

// runT2Batch is the batch worker (§4.7 T2, core 2): pop from R2 and
// hand each txn to the accumulator; on an empty R2, invoke Tick so the
// deadline trigger still fires for a slow trickle of arrivals (§4.4).
func (o *Orchestrator) runT2Batch() {
	defer o.wg.Done()
	corePin(o, 2, "T2-batch")

	var bo backoff.Backoff
	for !o.shuttingDown() {
		t, ok := o.r2.Pop()
		if !ok {
			if flushed, _ := o.acc.Tick(o.r3); flushed {
				o.stats.incBatchesFlushed()
			}
			bo.Wait()
			continue
		}
		bo.Reset()

		flushed, err := o.acc.Push(t, o.r3)
		if err != nil {
			// Output ring full: the accumulator kept its contents:
			// nothing is lost, the flush will be retried on the next
			// trigger (§4.4).
			continue
		}
		if flushed {
			o.stats.incBatchesFlushed()
		}
	}
}

// runT3Output is the output worker (§4.7 T3, core 3): pop Batches from
// R3, record each txn's end-to-end latency into the histogram (subject
// to the configured sampling fraction), and count the batch received.
// There is no real downstream sink here by design (§9): an external
// embedder supplies one by reading from the same place T3 would.
func (o *Orchestrator) runT3Output() {
	defer o.wg.Done()
	corePin(o, 3, "T3-output")

	var bo backoff.Backoff
	for !o.shuttingDown() {
		b, ok := o.r3.Pop()
		if !ok {
			bo.Wait()
			continue
		}
		bo.Reset()

		o.recordBatchLatency(b)
		o.stats.incBatchesReceived()
		o.stats.addInFlight(-int64(b.Count))
	}
}

func (o *Orchestrator) recordBatchLatency(b txn.Batch) {
	nowNs := cycle.NowNs()
	for _, t := range b.Slice() {
		if o.cfg.SampleFraction < 1.0 && rand.Float64() > o.cfg.SampleFraction {
			continue
		}
		if nowNs < t.IngressTsNs {
			continue // clock/epoch skew guard, should not happen in practice
		}
		o.hist.Record(nowNs - t.IngressTsNs)
	}
}

// runMonitor is the off-hot-path monitor thread (§4.7): it periodically
// snapshots stats and the histogram and logs them, never touching the
// rings, the book, or the accumulator.
func (o *Orchestrator) runMonitor(done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for !o.shuttingDown() {
		select {
		case <-ticker.C:
			s := o.stats.Snapshot()
			h := o.hist.Summary()
			o.log.Info("pipeline stats",
				iris.Uint64("ingress_generated", s.IngressGenerated),
				iris.Uint64("ingress_pushed", s.IngressPushed),
				iris.Uint64("ingress_dropped", s.IngressDropped),
				iris.Uint64("book_processed", s.BookProcessed),
				iris.Uint64("book_timeout", s.BookTimeout),
				iris.Uint64("batches_flushed", s.BatchesFlushed),
				iris.Uint64("batches_received", s.BatchesReceived),
				iris.Uint64("hist_count", h.Count),
				iris.Uint64("hist_p50_ns", o.hist.Percentile(0.5)),
				iris.Uint64("hist_p99_ns", o.hist.Percentile(0.99)),
			)
		case <-time.After(50 * time.Millisecond):
			// Poll the shutdown flag more often than the 1s report
			// interval so the monitor exits promptly once shutdown is
			// raised, instead of lingering up to a full tick late.
		}
	}
}
