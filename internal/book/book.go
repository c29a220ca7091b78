// Package book implements the price-aggregated order book (C4): a
// fixed 1024-bucket array per side, updated with a bounded CAS retry
// loop, plus relaxed best-price hints. It is deliberately not a limit
// order book — §3 folds 16 consecutive price ticks into one bucket, so
// two prices in the same bucket are indistinguishable and updates at
// different prices within a bucket net against each other (§4.3 and the
// "cancellation cross-price" testable scenario document this on
// purpose).
package book

import (
	"errors"
	"sync/atomic"
)

// numBuckets is the fixed bucket count per side (§3).
const numBuckets = 1024

// bucketMask folds a price onto [0, numBuckets) after the 16-tick
// shift: idx = (price >> 4) & 0x3FF.
const bucketShift = 4
const bucketMask = numBuckets - 1

// maxCASAttempts bounds the per-update retry loop (§4.3 step 5). A
// Timeout after this many failed CAS attempts is counted, not fatal.
const maxCASAttempts = 100

// maxBackoffCycles caps the spin-then-retry delay inside the CAS loop.
const maxBackoffCycles = 64

// ErrTimeout is returned when an update exhausts maxCASAttempts
// without winning its bucket's CAS.
var ErrTimeout = errors.New("book: update timed out after bounded retry")

// ErrOverflow is returned when applying delta would overflow the
// bucket's int64 quantity.
var ErrOverflow = errors.New("book: quantity overflow")

// cacheLinePad pads each of the book's 8-byte best-price hints out to a
// full 64-byte line so the two hints never share a cache line.
type cacheLinePad [64 - 8]byte

// bucket is one cache-aligned price-aggregation slot: 24 bytes of
// fields padded to 64, so that independent CAS loops on neighboring
// buckets never contend over the same cache line.
type bucket struct {
	quantity  int64
	lastTsNs  uint64
	lastPrice int64 // hint only, relaxed
	_         [64 - 24]byte
}

// Book is the fixed two-sided price-aggregated book. The zero value is
// ready to use.
type Book struct {
	bids [numBuckets]bucket
	asks [numBuckets]bucket

	_        cacheLinePad
	bestBid  int64
	_        cacheLinePad
	bestAsk  int64
	_        cacheLinePad
}

// BucketIndex maps a fixed-point price to its bucket per §3/§4.3:
// (price >> 4) & 0x3FF.
func BucketIndex(price int64) int {
	return int((price >> bucketShift) & bucketMask)
}

// UpdateBid applies delta to the bid-side bucket containing price.
// Positive delta is a standard buy-side notional add; T1 signs the
// delta by side before calling (§4.7).
func (b *Book) UpdateBid(price, delta int64, tsNs uint64) error {
	return b.update(&b.bids, &b.bestBid, price, delta, tsNs, true)
}

// UpdateAsk applies delta to the ask-side bucket containing price.
func (b *Book) UpdateAsk(price, delta int64, tsNs uint64) error {
	return b.update(&b.asks, &b.bestAsk, price, delta, tsNs, false)
}

func (b *Book) update(buckets *[numBuckets]bucket, best *int64, price, delta int64, tsNs uint64, isBid bool) error {
	idx := BucketIndex(price)
	bk := &buckets[idx]

	backoff := int64(1)
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		current := atomic.LoadInt64(&bk.quantity)
		next, ok := addOverflowChecked(current, delta)
		if !ok {
			return ErrOverflow
		}
		if atomic.CompareAndSwapInt64(&bk.quantity, current, next) {
			atomic.StoreUint64(&bk.lastTsNs, tsNs)
			atomic.StoreInt64(&bk.lastPrice, price)
			publishBestPrice(best, price, isBid)
			return nil
		}
		spin(backoff)
		if backoff < maxBackoffCycles {
			backoff *= 2
		}
	}
	return ErrTimeout
}

// publishBestPrice optimistically advances the best-side hint. A
// single weak-CAS attempt is made; losing the race is acceptable (§4.3):
// the hint may be stale by at most one bucket width and is never relied
// on for correctness, only for an approximate spread.
func publishBestPrice(best *int64, price int64, isBid bool) {
	cur := atomic.LoadInt64(best)
	if cur != 0 {
		if isBid && price <= cur {
			return
		}
		if !isBid && price >= cur {
			return
		}
	}
	atomic.CompareAndSwapInt64(best, cur, price)
}

// spinCounter absorbs the work spin() does so the compiler can't prove
// the loop is dead and eliminate it; its value is never read for
// anything but this purpose.
var spinCounter uint64

// spin busy-waits for roughly n iterations of a CPU-hint pause. It is
// intentionally cheap and allocation-free: this runs inside the book's
// hot-path CAS retry loop.
func spin(n int64) {
	for i := int64(0); i < n; i++ {
		atomic.AddUint64(&spinCounter, 1)
	}
}

// BestBid returns the current best-bid hint, or 0 if no bid update has
// landed yet.
func (b *Book) BestBid() int64 {
	return atomic.LoadInt64(&b.bestBid)
}

// BestAsk returns the current best-ask hint, or 0 if no ask update has
// landed yet.
func (b *Book) BestAsk() int64 {
	return atomic.LoadInt64(&b.bestAsk)
}

// Spread returns BestAsk - BestBid. Callers should treat a non-positive
// result as "insufficient data" if either side hasn't been populated.
func (b *Book) Spread() int64 {
	return b.BestAsk() - b.BestBid()
}

// BucketQuantity returns the current aggregate quantity at bucket idx
// on the requested side, for tests and off-hot-path observers.
func (b *Book) BucketQuantity(idx int, isBid bool) int64 {
	if isBid {
		return atomic.LoadInt64(&b.bids[idx].quantity)
	}
	return atomic.LoadInt64(&b.asks[idx].quantity)
}

func addOverflowChecked(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
