// Package cycle implements the architecture-specific cycle-counter
// facility (C2): a platform tick read, a one-shot calibration that
// converts ticks to nanoseconds, and the write-once publication of the
// resulting factor.
//
// read() is implemented per architecture in cycle_arm64.go (cntvct_el0),
// cycle_amd64.go (RDTSC), and cycle_generic.go (monotonic wall-clock
// fallback for anything else, documented imprecise).
package cycle

import (
	"sync/atomic"
	"time"
)

// ticksPerNsFixed holds the calibration factor as a fixed-point value
// (scaled by fixedPointScale) so it can live in an atomic uint64
// without a floating-point CAS. It is written exactly once, by
// Calibrate, before any worker thread is spawned.
var ticksPerNsFixed uint64

// epochTicks is the raw counter value sampled at the start of
// Calibrate: tick zero of "nanoseconds since calibration epoch" (§3).
var epochTicks uint64

// calibrated is a separate flag rather than "ticksPerNsFixed != 0" so
// that a calibration factor of exactly zero (a stopped or unreadable
// counter) is still distinguishable from "never calibrated".
var calibrated atomic.Bool

const fixedPointScale = 1 << 16

// calibrationSleep is how long Calibrate samples the counter across.
// 100ms gives ample precision on any counter frequency in the 1MHz-5GHz
// range while keeping startup latency negligible relative to a 10s run.
const calibrationSleep = 100 * time.Millisecond

// Read returns the current value of the platform cycle/virtual counter.
// It is valid to call before Calibrate; only TicksToNs requires
// calibration to have completed.
func Read() uint64 {
	return read()
}

// Calibrate samples the counter across a fixed wall-clock interval and
// publishes ticks-per-nanosecond for TicksToNs. It must run exactly
// once, as the orchestrator's first action, strictly before any worker
// thread is spawned: that ordering is what lets every later Read() be
// converted safely without a second synchronization point.
func Calibrate() {
	startTicks := read()
	atomic.StoreUint64(&epochTicks, startTicks)
	startWall := time.Now()
	time.Sleep(calibrationSleep)
	deltaTicks := read() - startTicks
	deltaNs := time.Since(startWall).Nanoseconds()

	var fixed uint64
	if deltaNs > 0 {
		fixed = uint64(float64(deltaTicks) * fixedPointScale / float64(deltaNs))
	}
	if fixed == 0 {
		// Degenerate counter (e.g. a stalled TSC under a hypervisor):
		// fall back to 1 tick == 1ns so TicksToNs stays well-defined
		// rather than dividing by zero forever.
		fixed = fixedPointScale
	}

	atomic.StoreUint64(&ticksPerNsFixed, fixed)
	calibrated.Store(true)
}

// TicksToNs converts a tick delta into nanoseconds using the factor
// published by Calibrate. Calling it before Calibrate has run is a
// programmer error by contract (§7): it panics rather than silently
// returning a meaningless value.
func TicksToNs(ticks uint64) uint64 {
	if !calibrated.Load() {
		panic("cycle: TicksToNs called before Calibrate")
	}
	fixed := atomic.LoadUint64(&ticksPerNsFixed)
	return ticks * fixedPointScale / fixed
}

// Calibrated reports whether Calibrate has completed. Exposed for
// components (like the monitor thread) that want to assert startup
// ordering without risking the panic in TicksToNs.
func Calibrated() bool {
	return calibrated.Load()
}

// NowNs returns nanoseconds since the calibration epoch (the instant
// Calibrate sampled its first tick): TicksToNs(Read() - epochTicks).
// This is the timestamp source for Transaction.IngressTsNs and
// Batch.FlushedTsNs, so that a later "now - ingress_ts_ns" latency
// computation is a plain subtraction in the same ns domain.
func NowNs() uint64 {
	return TicksToNs(read() - atomic.LoadUint64(&epochTicks))
}
