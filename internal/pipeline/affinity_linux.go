//go:build linux

package pipeline

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinCurrentThread locks the calling goroutine to its current OS
// thread and restricts that thread to a single core, grounded on
// the ublk queue runner's ioLoop (other_examples/ehrlich-b-go-ublk):
// LockOSThread first (a requirement here too -- a worker that hopped
// OS threads mid-run would silently lose its pin), then
// SchedSetaffinity with a CPUSet selecting exactly core.
func pinCurrentThread(core int) error {
	runtime.LockOSThread()

	var mask unix.CPUSet
	mask.Set(core)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("pipeline: pin to core %d: %w", core, err)
	}
	return nil
}
