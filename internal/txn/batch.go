package txn

// MaxBatchSize is the fixed capacity of a Batch's slot array and the
// size-trigger threshold for the batch accumulator.
const MaxBatchSize = 16

// batchPadding brings Batch to the 528-byte total the data model
// specifies: 16*32 (txns) + 1 (count) + 8 (flushed_ts_ns) = 521, padded
// to 528 for 8-byte alignment with 7 bytes to spare.
const batchPadding = 7

// Batch is the fixed-capacity, 528-byte unit the batch accumulator
// flushes onto R3. Only the first Count slots are semantically valid;
// the rest are whatever the accumulator's stack buffer happened to
// contain at flush time.
type Batch struct {
	Txns        [MaxBatchSize]Transaction
	Count       uint8
	_           [batchPadding]byte
	FlushedTsNs uint64
}

// Valid reports whether Count is within the fixed capacity.
func (b *Batch) Valid() bool {
	return b.Count <= MaxBatchSize
}

// Slice returns the semantically valid prefix of Txns.
func (b *Batch) Slice() []Transaction {
	return b.Txns[:b.Count]
}
