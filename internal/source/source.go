// Package source implements the synthetic transaction generator (C9):
// an exponential inter-arrival process feeding a random-walk mid-price,
// grounded in the teacher's internal/orders value-helper style
// (ParsePrice/FormatPrice/Now) but driven by math/rand/v2 the way the
// pack's newer repos do.
package source

import (
	"math/rand/v2"
	"time"

	"github.com/hftlab/txpipe/internal/cycle"
	"github.com/hftlab/txpipe/internal/txn"
)

// roundLotSizes is the small discrete set sizes are drawn from, so the
// book sees realistic round-lot-like pressure instead of a flat
// constant (SPEC_FULL §4.12).
var roundLotSizes = [...]uint32{1, 5, 10, 25, 50, 100}

// Config controls the synthetic source's statistical shape.
type Config struct {
	// RatePerSec is the target mean arrival rate; inter-arrival gaps
	// are drawn from Exp(RatePerSec).
	RatePerSec float64
	// MidPrice is the fixed-point starting mid-price the random walk
	// centers around.
	MidPrice int64
	// TickStep bounds how far a single step can move the mid-price.
	TickStep int64
}

// DefaultConfig mirrors the spec's default ingress rate (§6) and picks
// a mid-price/tick-step pair that keeps the random walk inside a
// handful of book buckets during a typical run.
func DefaultConfig() Config {
	return Config{
		RatePerSec: 100_000,
		MidPrice:   10_000, // 1.0000
		TickStep:   8,      // half a bucket width (§3: bucket = 16 ticks)
	}
}

// Source draws Transaction values from an exponential inter-arrival
// process over a random-walk price. It is not safe for concurrent use:
// the pipeline's T0 worker is its only caller (§4.7).
type Source struct {
	cfg    Config
	mid    int64
	nextID uint64
	rng    *rand.Rand
}

// New constructs a Source. seed selects the random stream; pass a
// fixed value for reproducible demo runs.
func New(cfg Config, seed uint64) *Source {
	return &Source{
		cfg: cfg,
		mid: cfg.MidPrice,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NextInterArrival draws the next inter-arrival gap in nanoseconds from
// an exponential distribution with mean 1/RatePerSec.
func (s *Source) NextInterArrival() time.Duration {
	secs := s.rng.ExpFloat64() / s.cfg.RatePerSec
	return time.Duration(secs * float64(time.Second))
}

// Next generates the next Transaction, walking the mid-price by at
// most TickStep in either direction and alternating sides roughly
// evenly so both sides of the book see pressure.
func (s *Source) Next() txn.Transaction {
	s.nextID++

	step := s.rng.Int64N(2*s.cfg.TickStep+1) - s.cfg.TickStep
	s.mid += step
	if s.mid <= 0 {
		s.mid = s.cfg.MidPrice
	}

	side := txn.SideBid
	if s.rng.IntN(2) == 1 {
		side = txn.SideAsk
	}

	size := roundLotSizes[s.rng.IntN(len(roundLotSizes))]
	ts := cycle.NowNs()

	// NewUnchecked is safe here: mid is kept > 0 above, size is always
	// drawn from a nonzero set, and side is one of the two constants.
	return txn.NewUnchecked(s.nextID, s.mid, size, side, ts)
}
