package source

import (
	"testing"

	"github.com/hftlab/txpipe/internal/cycle"
)

func init() {
	cycle.Calibrate()
}

func TestNextProducesValidTransactions(t *testing.T) {
	s := New(DefaultConfig(), 1)
	for i := 0; i < 1000; i++ {
		tx := s.Next()
		if err := tx.Validate(); err != nil {
			t.Fatalf("iteration %d: generated invalid transaction: %v", i, err)
		}
	}
}

func TestNextIDsAreMonotonic(t *testing.T) {
	s := New(DefaultConfig(), 2)
	var last uint64
	for i := 0; i < 100; i++ {
		tx := s.Next()
		if tx.ID <= last {
			t.Fatalf("iteration %d: ID %d did not increase past %d", i, tx.ID, last)
		}
		last = tx.ID
	}
}

func TestInterArrivalIsNonNegative(t *testing.T) {
	s := New(DefaultConfig(), 3)
	for i := 0; i < 100; i++ {
		if d := s.NextInterArrival(); d < 0 {
			t.Fatalf("iteration %d: negative inter-arrival %v", i, d)
		}
	}
}
