package histogram

import (
	"sync"
	"testing"
)

func TestRecordMonotonicity(t *testing.T) {
	h := New()
	if got := h.Summary().Min; got != ^uint64(0) {
		t.Fatalf("initial min = %d, want max uint64", got)
	}

	h.Record(500)
	s := h.Summary()
	if s.Count != 1 {
		t.Fatalf("count = %d, want 1", s.Count)
	}
	if s.Min != 500 || s.Max != 500 {
		t.Fatalf("min/max = %d/%d, want 500/500", s.Min, s.Max)
	}

	h.Record(100)
	h.Record(10_000)
	s = h.Summary()
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
	if s.Min != 100 {
		t.Fatalf("min = %d, want 100", s.Min)
	}
	if s.Max != 10_000 {
		t.Fatalf("max = %d, want 10000", s.Max)
	}
	if s.Sum != 10_600 {
		t.Fatalf("sum = %d, want 10600", s.Sum)
	}
}

func TestBucketAssignment(t *testing.T) {
	h := New()
	h.Record(50)     // bucket 0: < 100
	h.Record(150)    // bucket 1: 100-200
	h.Record(999_999) // last bucket: >= 500000

	s := h.Summary()
	if s.Buckets[0] != 1 {
		t.Fatalf("bucket 0 = %d, want 1", s.Buckets[0])
	}
	if s.Buckets[1] != 1 {
		t.Fatalf("bucket 1 = %d, want 1", s.Buckets[1])
	}
	if s.Buckets[numBuckets-1] != 1 {
		t.Fatalf("last bucket = %d, want 1", s.Buckets[numBuckets-1])
	}
}

func TestPercentileMonotonicDataset(t *testing.T) {
	h := New()
	for i := uint64(1); i <= 1000; i++ {
		h.Record(i * 100)
	}
	p50 := h.Percentile(0.5)
	p99 := h.Percentile(0.99)
	if p99 < p50 {
		t.Fatalf("p99 (%d) < p50 (%d)", p99, p50)
	}
}

func TestConcurrentRecordNeverLosesCount(t *testing.T) {
	h := New()
	const writers = 8
	const perWriter = 10_000

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				h.Record(uint64((i+seed)%1_000_000 + 1))
			}
		}(w)
	}
	wg.Wait()

	if got, want := h.Summary().Count, uint64(writers*perWriter); got != want {
		t.Fatalf("count = %d, want %d", got, want)
	}
}
