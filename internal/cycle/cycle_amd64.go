//go:build amd64

package cycle

// read returns the x86_64 timestamp counter (RDTSC), implemented in
// cycle_amd64.s. RDTSC is unserialized, which is acceptable here: the
// calibration window is 100ms and the per-transaction latency
// measurements tolerate the few-cycle reordering an unserialized read
// can introduce far better than they'd tolerate the overhead of
// RDTSCP or an LFENCE/RDTSC pair on every call.
func read() uint64
