package assemble

import "github.com/janplus/Impala/internal/column"

// ScratchBatch is the fixed-capacity tuple buffer the assembler fills one
// row group at a time. Go has no fixed tuple_byte_size to preallocate a
// byte arena for, so this is a slice of Row, each itself a slice of Slot
// of the template tuple's width — reallocation-free across resets since
// Reset only rewinds NumTuples rather than reallocating.
type ScratchBatch struct {
	rows     []column.Row
	width    int
	template column.Row

	// NumTuples is the filling cursor: how many of rows are populated by
	// the current iteration's reader pass.
	NumTuples int
}

// NewScratchBatch allocates a batch of capacity rows, each of width slots,
// initialized from template (partition keys / default nulls).
func NewScratchBatch(capacity, width int, template column.Row) *ScratchBatch {
	rows := make([]column.Row, capacity)
	backing := make([]column.Slot, capacity*width)
	for i := range rows {
		rows[i] = backing[i*width : (i+1)*width : (i+1)*width]
	}
	return &ScratchBatch{rows: rows, width: width, template: template}
}

// Capacity returns the fixed tuple capacity N.
func (b *ScratchBatch) Capacity() int { return len(b.rows) }

// Reset rewinds the batch to capacity N, re-seeding every slot from the
// template tuple.
func (b *ScratchBatch) Reset() {
	for i := range b.rows {
		copy(b.rows[i], b.template)
	}
	b.NumTuples = 0
}

// Rows returns the backing row slice, valid up to Capacity() — column
// readers write into rows[:n] where n is however many tuples they
// produced this pass; the assembler's tie check compares that count
// across readers.
func (b *ScratchBatch) Rows() []column.Row { return b.rows }
