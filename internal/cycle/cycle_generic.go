//go:build !arm64 && !amd64

package cycle

import "time"

// read falls back to the monotonic wall clock on architectures without
// a dedicated cycle-counter implementation. This is documented
// imprecise: time.Now()'s monotonic reading has syscall-adjacent
// overhead and coarser resolution than a direct counter read, so
// latency figures on these platforms run systematically higher than on
// arm64/amd64.
func read() uint64 {
	return uint64(time.Now().UnixNano())
}
