package book

import "testing"

func TestBucketAggregation(t *testing.T) {
	var b Book
	if err := b.UpdateBid(10000, 100, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.UpdateBid(10005, 50, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idx := BucketIndex(10000)
	if idx != 625 {
		t.Fatalf("BucketIndex(10000) = %d, want 625", idx)
	}
	if got := b.BucketQuantity(idx, true); got != 150 {
		t.Fatalf("bucket quantity = %d, want 150", got)
	}
	if bid := b.BestBid(); bid < 10000 || bid > 10015 {
		t.Fatalf("BestBid() = %d, want in [10000, 10015]", bid)
	}
}

func TestCancellationWithinBucket(t *testing.T) {
	var b Book
	if err := b.UpdateBid(10000, 100, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.UpdateBid(10001, -100, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idx := BucketIndex(10000)
	if got := b.BucketQuantity(idx, true); got != 0 {
		t.Fatalf("bucket quantity = %d, want 0 (aggregate cancellation)", got)
	}
}

func TestBucketSumInvariant(t *testing.T) {
	var b Book
	var want int64
	deltas := []int64{10, -3, 50, -20, 7, 100, -50}
	for i, d := range deltas {
		if err := b.UpdateBid(10000, d, uint64(i)); err != nil {
			t.Fatalf("unexpected error on update %d: %v", i, err)
		}
		want += d
	}
	if got := b.BucketQuantity(BucketIndex(10000), true); got != want {
		t.Fatalf("bucket quantity = %d, want %d", got, want)
	}
}

func TestOverflowRejected(t *testing.T) {
	var b Book
	if err := b.UpdateBid(10000, 1<<62, 1); err != nil {
		t.Fatalf("unexpected error on first update: %v", err)
	}
	if err := b.UpdateBid(10000, 1<<62, 2); err != ErrOverflow {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestSpreadOrdering(t *testing.T) {
	var b Book
	if err := b.UpdateBid(10000, 10, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.UpdateAsk(10100, 10, 2); err != nil {
		t.Fatal(err)
	}
	if b.BestAsk() < b.BestBid() {
		t.Fatalf("BestAsk() = %d < BestBid() = %d", b.BestAsk(), b.BestBid())
	}
	if spread := b.Spread(); spread <= 0 {
		t.Fatalf("Spread() = %d, want > 0", spread)
	}
}

func TestIndependentBucketsDoNotInteract(t *testing.T) {
	var b Book
	if err := b.UpdateBid(10000, 100, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.UpdateBid(20000, 50, 2); err != nil {
		t.Fatal(err)
	}
	if got := b.BucketQuantity(BucketIndex(10000), true); got != 100 {
		t.Fatalf("bucket 10000 quantity = %d, want 100", got)
	}
	if got := b.BucketQuantity(BucketIndex(20000), true); got != 50 {
		t.Fatalf("bucket 20000 quantity = %d, want 50", got)
	}
}
