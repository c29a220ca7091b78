// Package pipeline implements the pipeline orchestrator (C8): it wires
// the three rings, the book, the histogram, and the shared stats
// together, spawns the four pinned worker stages plus an off-hot-path
// monitor thread, and owns the ordered startup and shutdown-drain
// sequence from §4.7.
//
// The control-flow shape -- construct components in dependency order,
// a signal-driven Shutdown that drains in-flight work before returning
// -- is grounded on order-matching-engine/cmd/server/main.go's
// Server/NewServer/Start/Shutdown lifecycle.
package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/iris"

	"github.com/hftlab/txpipe/internal/batch"
	"github.com/hftlab/txpipe/internal/book"
	"github.com/hftlab/txpipe/internal/cycle"
	"github.com/hftlab/txpipe/internal/histogram"
	"github.com/hftlab/txpipe/internal/ring"
	"github.com/hftlab/txpipe/internal/source"
	"github.com/hftlab/txpipe/internal/txn"
)

// drainSettleDelay is how long the orchestrator sleeps before draining
// so in-flight items clear naturally (§4.7 shutdown step 1).
const drainSettleDelay = 50 * time.Millisecond

// Orchestrator owns the pipeline's entire lifetime: construction,
// worker spawn, and the shutdown drain that is the only mechanism
// preventing loss of in-flight data (§4.7).
type Orchestrator struct {
	cfg Config
	log *iris.Logger

	r1 *ring.Ring[txn.Transaction]
	r2 *ring.Ring[txn.Transaction]
	r3 *ring.Ring[txn.Batch]

	book *book.Book
	hist *histogram.Histogram
	stats Stats

	src *source.Source
	acc  batch.Accumulator

	shutdown atomic.Bool
	wg       sync.WaitGroup
}

// New builds an Orchestrator. Per the strict startup order in §4.7,
// the caller must call Calibrate (internal/cycle) before New if it
// hasn't already -- New itself does not calibrate, so that the
// orchestrator's constructor stays free of the "first action before
// any I/O or thread creation" ordering requirement; Run enforces it.
func New(cfg Config, log *iris.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:  cfg,
		log:  log,
		r1:   ring.New[txn.Transaction](cfg.RingSizeR1),
		r2:   ring.New[txn.Transaction](cfg.RingSizeR2),
		r3:   ring.New[txn.Batch](cfg.RingSizeR3),
		book: &book.Book{},
		hist: histogram.New(),
		src:  source.New(source.Config{RatePerSec: cfg.RatePerSec, MidPrice: 10_000, TickStep: 8}, 42),
	}
}

// Snapshot returns the current stats snapshot, safe to call at any
// time from any goroutine (§6 "readable at any time").
func (o *Orchestrator) Snapshot() Snapshot {
	return o.stats.Snapshot()
}

// HistogramSummary returns the current latency histogram summary.
func (o *Orchestrator) HistogramSummary() histogram.Summary {
	return o.hist.Summary()
}

// Book exposes the read-only best-price accessors for off-hot-path
// observers; the book itself is only ever written by T1 (§5).
func (o *Orchestrator) Book() *book.Book {
	return o.book
}

// Run executes the pipeline for cfg.RunDuration (or until stopCh is
// closed, whichever comes first), performs the shutdown drain, and
// returns once every worker has joined. It follows the strict startup
// order from §4.7:
//  1. Calibrate cycle.
//  2. Rings/Stats/Book/Histogram are already allocated by New.
//  3. Construct the shutdown signal (o.shutdown, the zero value).
//  4. Spawn T0..T3 in order, each pinning itself first.
func (o *Orchestrator) Run(stopCh <-chan struct{}) {
	if !cycle.Calibrated() {
		cycle.Calibrate()
	}
	o.log.Info("pipeline starting",
		iris.Int64("ring1", int64(o.r1.Cap())),
		iris.Int64("ring2", int64(o.r2.Cap())),
		iris.Int64("ring3", int64(o.r3.Cap())),
		iris.Float64("rate_per_sec", o.cfg.RatePerSec),
	)

	o.wg.Add(4)
	go o.runT0Ingress()
	go o.runT1BookFold()
	go o.runT2Batch()
	go o.runT3Output()

	monitorDone := make(chan struct{})
	go o.runMonitor(monitorDone)

	timer := time.NewTimer(o.cfg.RunDuration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-stopCh:
	}

	o.shutdown.Store(true)
	o.wg.Wait()
	<-monitorDone

	o.drain()
	o.logFinalStats()
}

// shuttingDown reports the shutdown flag with relaxed/atomic semantics,
// read at the top of every worker loop iteration (§9 Design Notes:
// "process-wide shutdown signal").
func (o *Orchestrator) shuttingDown() bool {
	return o.shutdown.Load()
}

// drain performs the single-threaded shutdown drain (§4.7 steps 1-4):
// sleep briefly so in-flight items clear naturally, then fold R1
// straight onto the book and R2, flush the accumulator, and count R3.
// By this point every worker has joined, so this runs with no
// concurrent producer/consumer on any ring.
func (o *Orchestrator) drain() {
	time.Sleep(drainSettleDelay)

	r1Drained := o.r1.Drain(func(t txn.Transaction) {
		o.foldIntoBook(t)
		if err := o.r2.Push(t); err != nil {
			o.stats.incBookFoldDropped()
			o.stats.addInFlight(-1)
			return
		}
	})

	r2Drained := o.r2.Drain(func(t txn.Transaction) {
		if _, err := o.acc.Push(t, o.r3); err != nil {
			o.stats.incIngressDropped()
		}
	})
	if o.acc.Count() > 0 {
		if err := o.acc.ForceFlush(o.r3); err != nil {
			o.log.Error("drain: force flush failed", iris.Err(err))
		}
	}

	r3Drained := o.r3.Drain(func(b txn.Batch) {
		o.stats.incBatchesReceived()
		o.stats.addInFlight(-int64(b.Count))
	})

	o.log.Info("drain complete",
		iris.Int64("r1_drained", int64(r1Drained)),
		iris.Int64("r2_drained", int64(r2Drained)),
		iris.Int64("r3_drained", int64(r3Drained)),
	)
}

func (o *Orchestrator) foldIntoBook(t txn.Transaction) {
	delta := int64(t.Size) * t.Side.Sign()
	var err error
	if t.Side == txn.SideBid {
		err = o.book.UpdateBid(t.Price, delta, t.IngressTsNs)
	} else {
		err = o.book.UpdateAsk(t.Price, delta, t.IngressTsNs)
	}
	switch err {
	case nil:
		o.stats.incBookProcessed()
	case book.ErrTimeout:
		o.stats.incBookTimeout()
	default:
		// book.ErrOverflow: the update is rejected and not counted;
		// Stats has no overflow counter.
	}
}

func (o *Orchestrator) logFinalStats() {
	s := o.stats.Snapshot()
	h := o.hist.Summary()
	o.log.Info("final stats",
		iris.Uint64("ingress_generated", s.IngressGenerated),
		iris.Uint64("ingress_pushed", s.IngressPushed),
		iris.Uint64("ingress_dropped", s.IngressDropped),
		iris.Uint64("book_processed", s.BookProcessed),
		iris.Uint64("book_timeout", s.BookTimeout),
		iris.Uint64("batches_flushed", s.BatchesFlushed),
		iris.Uint64("batches_received", s.BatchesReceived),
	)
	o.log.Info("latency histogram",
		iris.Uint64("count", h.Count),
		iris.Uint64("min_ns", h.Min),
		iris.Uint64("max_ns", h.Max),
		iris.Uint64("p50_ns", o.hist.Percentile(0.5)),
		iris.Uint64("p99_ns", o.hist.Percentile(0.99)),
	)
}

func corePin(o *Orchestrator, offset int, stage string) {
	if o.cfg.NoPin {
		return
	}
	core := o.cfg.PinBaseCore + offset
	if err := pinCurrentThread(core); err != nil {
		o.log.Warn("failed to pin worker to core, continuing unpinned",
			iris.String("stage", stage),
			iris.Int64("core", int64(core)),
			iris.Err(err),
		)
	}
}
