// Package column implements the ScalarColumnReader and
// CollectionColumnReader that materialize typed, possibly-nested tuples
// from a row group's column chunks.
package column

import "github.com/janplus/Impala/internal/valdecode"

// Slot is one column's worth of one output tuple: a tagged union rather
// than a raw memory offset, since Go has no per-tuple byte layout to
// template over. Each reader knows its own slot index and decode path, so
// dispatch happens at the reader level, not in the storage representation.
type Slot struct {
	Null bool

	// Value holds a decoded scalar leaf value. Meaningless when List != nil
	// (this slot represents a materialized collection instead).
	Value valdecode.Value

	// Position holds a synthetic ARRAY_POS value. Meaningful only for
	// slots a PathResolver marked PosField.
	Position int64

	// List holds one materialized element per array/map entry when this
	// slot represents a collection column. Each element is itself a full
	// Row so nested collections and structs compose.
	List []Row
}

// Row is one output tuple: one Slot per projected reader, in the order the
// RowGroupScanner assigned reader slots.
type Row []Slot

// Reader is the common surface the RowAssembler needs, satisfied by both
// ScalarColumnReader and CollectionColumnReader.
type Reader interface {
	MaxDefLevel() int
	MaxRepLevel() int
	RowGroupAtEnd() bool

	// ReadValueBatch and ReadNonRepeatedValueBatch are the two
	// assembler-facing materialization entry points: the former for a
	// reader nested under a collection, the latter for a reader bound
	// directly to a top-level (non-repeated-ancestor) slot.
	ReadValueBatch(max int, rows []Row) (int, error)
	ReadNonRepeatedValueBatch(max int, rows []Row) (int, error)
}

// Item is the one-level-lookahead surface CollectionColumnReader drives its
// leftmost child through: PeekLevels reports the next (def, rep) pair
// without consuming it, and ConsumeOne consumes exactly that pair and
// materializes it into dst. Both ScalarColumnReader and
// CollectionColumnReader implement it, so collections of collections (and
// of structs, once added) compose through the same interface.
type Item interface {
	Reader
	PeekLevels() (def, rep byte, ok bool, err error)
	ConsumeOne(dst *Slot) (produced bool, err error)
}
