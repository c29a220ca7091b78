//go:build arm64

package cycle

// read returns the ARM64 virtual counter (cntvct_el0), implemented in
// cycle_arm64.s. The virtual counter is preferred over the physical
// counter (cntpct_el0) because it is accessible from userspace on every
// mainstream Linux/Darwin ARM64 target without a kernel trap.
func read() uint64
