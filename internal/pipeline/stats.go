package pipeline

import "sync/atomic"

// cacheLinePad keeps each stats counter on its own cache line so the
// four independent workers incrementing different counters never
// false-share (§3 Stats, §5 Shared-resource discipline).
type cacheLinePad [64 - 8]byte

type counter struct {
	v uint64
	_ cacheLinePad
}

// Stats holds the atomic counters §3/§6 require the orchestrator to
// expose, each cache-padded. The zero value is ready to use.
//
// bookFoldDropped is distinct from ingressDropped: ingressDropped counts
// T0's R1-push failures, which are never counted as ingress_pushed in
// the first place. A txn dropped by T1 on a full R2 (or by the drain's
// R1->R2 fold) was already counted via incIngressPushed when it
// succeeded onto R1, so folding it into ingressDropped too would let
// ingress_pushed + ingress_dropped exceed ingress_generated, violating
// the §8 conservation invariant.
type Stats struct {
	ingressGenerated counter
	ingressPushed    counter
	ingressDropped   counter
	bookFoldDropped  counter
	bookProcessed    counter
	bookTimeout      counter
	batchesFlushed   counter
	batchesReceived  counter
	inFlight         counter
}

func (s *Stats) incIngressGenerated() { atomic.AddUint64(&s.ingressGenerated.v, 1) }
func (s *Stats) incIngressPushed()    { atomic.AddUint64(&s.ingressPushed.v, 1) }
func (s *Stats) incIngressDropped()   { atomic.AddUint64(&s.ingressDropped.v, 1) }
func (s *Stats) incBookFoldDropped()  { atomic.AddUint64(&s.bookFoldDropped.v, 1) }
func (s *Stats) incBookProcessed()    { atomic.AddUint64(&s.bookProcessed.v, 1) }
func (s *Stats) incBookTimeout()      { atomic.AddUint64(&s.bookTimeout.v, 1) }
func (s *Stats) incBatchesFlushed()   { atomic.AddUint64(&s.batchesFlushed.v, 1) }
func (s *Stats) incBatchesReceived()  { atomic.AddUint64(&s.batchesReceived.v, 1) }
func (s *Stats) addInFlight(delta int64) {
	atomic.AddUint64(&s.inFlight.v, uint64(delta))
}

// Snapshot is the plain value type §6 requires: a point-in-time read of
// every stats counter, JSON-taggable by an external embedder without
// that embedder needing to reach into Stats' internals (C13).
type Snapshot struct {
	IngressGenerated uint64 `json:"ingress_generated"`
	IngressPushed    uint64 `json:"ingress_pushed"`
	IngressDropped   uint64 `json:"ingress_dropped"`
	BookFoldDropped  uint64 `json:"book_fold_dropped"`
	BookProcessed    uint64 `json:"book_processed"`
	BookTimeout      uint64 `json:"book_timeout"`
	BatchesFlushed   uint64 `json:"batches_flushed"`
	BatchesReceived  uint64 `json:"batches_received"`
	InFlight         uint64 `json:"in_flight"`
}

// Snapshot reads every counter independently with its own atomic load;
// relaxed ordering is correct here because no correctness invariant
// couples two counters (§5).
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		IngressGenerated: atomic.LoadUint64(&s.ingressGenerated.v),
		IngressPushed:    atomic.LoadUint64(&s.ingressPushed.v),
		IngressDropped:   atomic.LoadUint64(&s.ingressDropped.v),
		BookFoldDropped:  atomic.LoadUint64(&s.bookFoldDropped.v),
		BookProcessed:    atomic.LoadUint64(&s.bookProcessed.v),
		BookTimeout:      atomic.LoadUint64(&s.bookTimeout.v),
		BatchesFlushed:   atomic.LoadUint64(&s.batchesFlushed.v),
		BatchesReceived:  atomic.LoadUint64(&s.batchesReceived.v),
		InFlight:         atomic.LoadUint64(&s.inFlight.v),
	}
}
