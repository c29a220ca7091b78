// Package txn defines the fixed-layout records that flow through the
// pipeline: Transaction, the 32-byte unit of ingress, and Batch, the
// 528-byte unit the batch accumulator hands to the output stage.
//
// Memory Layout Considerations (mirrors internal/orders in the teacher
// repo this package replaces):
//   - Fields are ordered to minimize padding.
//   - Both types contain only fixed-width integers and explicit padding,
//     so a byte-for-byte reinterpretation (ToBytes/FromBytes) never
//     produces an invalid bit pattern.
//   - No pointers, no strings: both types are safe to copy by value
//     across ring-buffer slots without aliasing concerns.
package txn

import (
	"encoding/binary"
	"fmt"
)

// Side indicates which side of the book a transaction affects.
type Side uint8

const (
	SideBid Side = 0
	SideAsk Side = 1
)

func (s Side) String() string {
	switch s {
	case SideBid:
		return "BID"
	case SideAsk:
		return "ASK"
	default:
		return "INVALID"
	}
}

// Valid reports whether s is one of the two defined sides.
func (s Side) Valid() bool {
	return s == SideBid || s == SideAsk
}

// Sign returns +1 for a bid and -1 for an ask, the multiplier the book
// fold stage applies to a transaction's size before folding it into the
// aggregate quantity at its bucket.
func (s Side) Sign() int64 {
	if s == SideAsk {
		return -1
	}
	return 1
}

// Size is the wire size of a Transaction in bytes: 8 (id) + 8 (price) +
// 4 (size) + 1 (side) + 3 (reserved padding) + 8 (ingress_ts_ns).
const Size = 32

// Transaction is the 32-byte, 8-byte-aligned unit of ingress. Price is
// fixed-point with an implicit 4-decimal scale (10000 == 1.0000).
type Transaction struct {
	ID          uint64
	Price       int64
	Size        uint32
	Side        Side
	_           [3]byte // reserved, zero-initialized
	IngressTsNs uint64
}

// New validates fields and returns a Transaction, or a typed error if
// any invariant in the data model is violated. This is the only
// constructor ordinary producers should use.
func New(id uint64, price int64, size uint32, side Side, ingressTsNs uint64) (Transaction, error) {
	if price <= 0 {
		return Transaction{}, &InvalidFieldError{Field: "price", Reason: "must be > 0"}
	}
	if size == 0 {
		return Transaction{}, &InvalidFieldError{Field: "size", Reason: "must be > 0"}
	}
	if !side.Valid() {
		return Transaction{}, &InvalidFieldError{Field: "side", Reason: "must be 0 (bid) or 1 (ask)"}
	}
	return Transaction{ID: id, Price: price, Size: size, Side: side, IngressTsNs: ingressTsNs}, nil
}

// NewUnchecked builds a Transaction without validating invariants. It
// asserts (panics) in builds compiled with the debug build tag and is
// intended only for trusted internal paths such as shutdown drain and
// tests, where the fields are already known-valid.
func NewUnchecked(id uint64, price int64, size uint32, side Side, ingressTsNs uint64) Transaction {
	assertValid(price, size, side)
	return Transaction{ID: id, Price: price, Size: size, Side: side, IngressTsNs: ingressTsNs}
}

// InvalidFieldError is returned by New when a constructor argument
// violates a data-model invariant.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("txn: invalid field %q: %s", e.Field, e.Reason)
}

// ToBytes returns the literal in-memory representation of t, little
// endian, field order as declared on Transaction. The result is stable
// across runs on platforms of identical endianness.
func (t Transaction) ToBytes() [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint64(b[0:8], t.ID)
	binary.LittleEndian.PutUint64(b[8:16], uint64(t.Price))
	binary.LittleEndian.PutUint32(b[16:20], t.Size)
	b[20] = byte(t.Side)
	// b[21:24] reserved, left zero
	binary.LittleEndian.PutUint64(b[24:32], t.IngressTsNs)
	return b
}

// FromBytes reinterprets a 32-byte wire form produced by ToBytes back
// into a Transaction. It does not re-validate field invariants: callers
// that need the checked invariants should route the result through
// Validate.
func FromBytes(b [Size]byte) Transaction {
	return Transaction{
		ID:          binary.LittleEndian.Uint64(b[0:8]),
		Price:       int64(binary.LittleEndian.Uint64(b[8:16])),
		Size:        binary.LittleEndian.Uint32(b[16:20]),
		Side:        Side(b[20]),
		IngressTsNs: binary.LittleEndian.Uint64(b[24:32]),
	}
}

// Validate checks t against the data-model invariants without
// reconstructing it, for use after FromBytes on untrusted input.
func (t Transaction) Validate() error {
	if t.Price <= 0 {
		return &InvalidFieldError{Field: "price", Reason: "must be > 0"}
	}
	if t.Size == 0 {
		return &InvalidFieldError{Field: "size", Reason: "must be > 0"}
	}
	if !t.Side.Valid() {
		return &InvalidFieldError{Field: "side", Reason: "must be 0 (bid) or 1 (ask)"}
	}
	return nil
}

func assertValid(price int64, size uint32, side Side) {
	if !debugAsserts {
		return
	}
	if price <= 0 {
		panic("txn: NewUnchecked called with price <= 0")
	}
	if size == 0 {
		panic("txn: NewUnchecked called with size == 0")
	}
	if !side.Valid() {
		panic("txn: NewUnchecked called with invalid side")
	}
}
