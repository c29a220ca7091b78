package txn

import "testing"

func TestNewRejectsInvalidFields(t *testing.T) {
	cases := []struct {
		name  string
		price int64
		size  uint32
		side  Side
	}{
		{"zero price", 0, 100, SideBid},
		{"negative price", -5, 100, SideBid},
		{"zero size", 10000, 0, SideBid},
		{"invalid side", 10000, 100, Side(2)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(1, c.price, c.size, c.side, 0); err == nil {
				t.Errorf("expected error for %s", c.name)
			}
		})
	}
}

func TestNewAcceptsValidFields(t *testing.T) {
	tx, err := New(1, 10000, 100, SideBid, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID != 1 || tx.Price != 10000 || tx.Size != 100 || tx.Side != SideBid || tx.IngressTsNs != 42 {
		t.Errorf("unexpected transaction: %+v", tx)
	}
}

func TestByteRoundTrip(t *testing.T) {
	tx, err := New(123, 98765, 50, SideAsk, 1_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := tx.ToBytes()
	got := FromBytes(b)

	if got != tx {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, tx)
	}
}

func TestByteRoundTripFuzzLike(t *testing.T) {
	for i := uint64(1); i < 500; i++ {
		side := SideBid
		if i%2 == 1 {
			side = SideAsk
		}
		tx, err := New(i, int64(i*7+1), uint32(i%1000+1), side, i*131)
		if err != nil {
			t.Fatalf("unexpected error at i=%d: %v", i, err)
		}
		if got := FromBytes(tx.ToBytes()); got != tx {
			t.Errorf("round trip mismatch at i=%d: got %+v, want %+v", i, got, tx)
		}
	}
}

func TestSideSignAndValid(t *testing.T) {
	if !SideBid.Valid() || !SideAsk.Valid() {
		t.Error("expected SideBid and SideAsk to be valid")
	}
	if Side(2).Valid() {
		t.Error("expected Side(2) to be invalid")
	}
	if SideBid.Sign() != 1 {
		t.Errorf("expected bid sign +1, got %d", SideBid.Sign())
	}
	if SideAsk.Sign() != -1 {
		t.Errorf("expected ask sign -1, got %d", SideAsk.Sign())
	}
}

func TestBatchValidAndSlice(t *testing.T) {
	var b Batch
	b.Count = 3
	for i := 0; i < 3; i++ {
		b.Txns[i] = Transaction{ID: uint64(i + 1)}
	}

	if !b.Valid() {
		t.Error("expected batch with count=3 to be valid")
	}
	if len(b.Slice()) != 3 {
		t.Errorf("expected slice length 3, got %d", len(b.Slice()))
	}

	b.Count = MaxBatchSize + 1
	if b.Valid() {
		t.Error("expected batch with count > MaxBatchSize to be invalid")
	}
}
