//go:build debug

package txn

// debugAsserts is true only in builds compiled with -tags debug, gating
// the panics in NewUnchecked per the "asserts in debug" contract for
// the trusted internal constructor.
const debugAsserts = true
