//go:build !linux

package pipeline

// pinCurrentThread is a documented no-op on non-Linux targets, mirroring
// the cycle package's arch-specific/generic split (SPEC_FULL §4.10):
// SchedSetaffinity has no portable equivalent, and affinity only ever
// affects tail latency, never correctness (§5), so the worker simply
// runs unpinned.
func pinCurrentThread(core int) error {
	return nil
}
