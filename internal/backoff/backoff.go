// Package backoff implements the three-phase adaptive escalator (C7)
// consumers use while a ring is empty: spin, then cooperative yield, as
// resolved by SPEC_FULL §9's Open Question in favor of yielding over a
// fixed sleep in the saturated phase.
package backoff

import (
	"runtime"
	"sync/atomic"
)

// spinSteps are the per-step CPU-hint pause counts for Phase A
// (§4.6 steps 0-6).
var spinSteps = [...]int{1, 2, 4, 8, 16, 32, 64}

// yieldPhaseStart is the step at which Phase B (cooperative yield to
// the OS scheduler) begins.
const yieldPhaseStart = len(spinSteps)

// yieldPhaseEnd (exclusive) is where step saturates into Phase C.
const yieldPhaseEnd = yieldPhaseStart + 4

// Backoff is a per-thread escalator. It is not safe for concurrent
// use by more than one goroutine, matching the single-consumer
// ownership of the ring it backs off for.
type Backoff struct {
	step int
}

// Wait executes the current step's action (spin, yield, or yield-again
// once saturated) and advances the step counter, saturating once Phase
// C is reached.
func (b *Backoff) Wait() {
	switch {
	case b.step < yieldPhaseStart:
		spin(spinSteps[b.step])
	default:
		// Phase B and the saturated Phase C both cooperatively yield;
		// the only difference is how many consecutive idle polls have
		// already happened, which doesn't change the action itself
		// (§9: "eventually releases the core under sustained
		// starvation" is the invariant, not the specific sleep call).
		runtime.Gosched()
	}
	if b.step < yieldPhaseEnd {
		b.step++
	}
}

// Reset returns the escalator to Phase A step 0. Called whenever the
// consumer's Pop succeeds, so a burst of work never pays yield-phase
// latency on its very next idle spin (§4.6).
func (b *Backoff) Reset() {
	b.step = 0
}

// Phase reports which phase the escalator currently occupies, for
// tests and monitoring: 0 = spinning, 1 = yielding.
func (b *Backoff) Phase() int {
	if b.step < yieldPhaseStart {
		return 0
	}
	return 1
}

// spinCounter absorbs the work spin() does so the compiler can't prove
// the loop is dead and eliminate it; shared across all Backoff
// instances but only ever incremented, so concurrent callers never
// need to coordinate on it beyond the atomic add itself.
var spinCounter uint64

func spin(n int) {
	for i := 0; i < n; i++ {
		atomic.AddUint64(&spinCounter, 1)
	}
}
