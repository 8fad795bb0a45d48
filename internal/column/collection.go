package column

import (
	"github.com/janplus/Impala/internal/schema"
)

// CollectionColumnReader represents a repeated/map/array node. Unlike
// ScalarColumnReader it never reads bytes directly; it reflects the state
// of its leftmost child and assembles a Row per collection instance by
// pulling items from that child until the child's repetition level signals
// a new collection has begun.
type CollectionColumnReader struct {
	node  *schema.Node
	child Item

	// SlotIndex is the slot this reader fills when bound to a query
	// projection.
	SlotIndex int
}

// NewCollectionColumnReader constructs a reader for node (the array/map
// container: the two/three-level wrapper group, or the bare repeated leaf
// itself in one-level form) driven by child, its leftmost descendant.
func NewCollectionColumnReader(node *schema.Node, child Item, slotIndex int) *CollectionColumnReader {
	return &CollectionColumnReader{node: node, child: child, SlotIndex: slotIndex}
}

func (c *CollectionColumnReader) MaxDefLevel() int    { return c.node.MaxDefLevel }
func (c *CollectionColumnReader) MaxRepLevel() int    { return c.node.MaxRepLevel }
func (c *CollectionColumnReader) RowGroupAtEnd() bool { return c.child.RowGroupAtEnd() }

// PeekLevels reports the leftmost child's next (def, rep) pair without
// consuming it — this reader's own levels equal its leftmost child's.
func (c *CollectionColumnReader) PeekLevels() (def, rep byte, ok bool, err error) {
	return c.child.PeekLevels()
}

// ConsumeOne assembles exactly one collection instance (or a single null)
// into dst, consuming however many child levels that takes.
func (c *CollectionColumnReader) ConsumeOne(dst *Slot) (produced bool, err error) {
	def, _, ok, err := c.child.PeekLevels()
	if err != nil || !ok {
		return false, err
	}
	if int(def) < c.node.MaxDefLevel {
		// This node's own group is absent: either its optional ancestor is
		// null, or (for a required/repeated group) this cannot occur.
		// Consume the single placeholder level and report null; the levels
		// don't support a finer null-vs-empty distinction than this.
		if _, err := c.child.ConsumeOne(&Slot{}); err != nil {
			return false, err
		}
		*dst = Slot{Null: true}
		return true, nil
	}
	items, err := c.collectItems()
	if err != nil {
		return false, err
	}
	*dst = Slot{List: items}
	return true, nil
}

// collectItems pulls items from the leftmost child until a boundary: the
// rep level of the next peeked value falls to or below max_rep_level-1,
// meaning the *next* value starts a new collection (or a new top-level
// row), not a continuation of the current one.
func (c *CollectionColumnReader) collectItems() ([]Row, error) {
	var items []Row
	for {
		item := Slot{}
		produced, err := c.child.ConsumeOne(&item)
		if err != nil {
			return nil, err
		}
		if produced {
			items = append(items, Row{item})
		}

		_, rep, ok, err := c.child.PeekLevels()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if int(rep) <= c.node.MaxRepLevel-1 {
			break
		}
	}
	return items, nil
}

// ReadValueBatch materializes up to max collection instances (one per
// output row) into rows at SlotIndex, stopping early at row group end.
func (c *CollectionColumnReader) ReadValueBatch(max int, rows []Row) (int, error) {
	produced := 0
	for produced < max {
		var slot Slot
		ok, err := c.ConsumeOne(&slot)
		if err != nil {
			return produced, err
		}
		if !ok {
			break
		}
		rows[produced][c.SlotIndex] = slot
		produced++
	}
	return produced, nil
}

// ReadNonRepeatedValueBatch is identical to ReadValueBatch here: a
// collection bound directly to a top-level slot has no enclosing repeated
// ancestor of its own, so every instance it produces is already one
// complete output row.
func (c *CollectionColumnReader) ReadNonRepeatedValueBatch(max int, rows []Row) (int, error) {
	return c.ReadValueBatch(max, rows)
}
