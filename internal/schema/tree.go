// Package schema builds a tree from a flat Parquet schema array and
// resolves logical column paths (including one/two/three-level list and
// map shapes) onto physical leaves.
package schema

import (
	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/format"
)

// maxLevel is the ceiling a byte-sized level cache implies:
// max_def_level/max_rep_level must fit in a byte.
const maxLevel = 255

// Node is one schema element plus its computed definition/repetition
// level metadata.
type Node struct {
	Element format.SchemaElement

	// ColIdx indexes into the row group's column list; valid only on
	// leaves (IsLeaf() == true). Non-leaves carry -1.
	ColIdx int

	MaxDefLevel int
	MaxRepLevel int

	// IRA is the definition level at which this node's nearest enclosing
	// repeated ancestor becomes present, used to distinguish "container
	// absent/empty" from "null leaf".
	IRA int

	Parent   *Node
	Children []*Node
}

// IsLeaf reports whether n is a physical column (no children).
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// IsRepeated reports whether n's own repetition is REPEATED.
func (n *Node) IsRepeated() bool {
	return n.Element.RepetitionType != nil && *n.Element.RepetitionType == format.Repeated
}

// IsOptional reports whether n's own repetition is OPTIONAL.
func (n *Node) IsOptional() bool {
	return n.Element.RepetitionType != nil && *n.Element.RepetitionType == format.Optional
}

// ChildByName returns the first direct child named name, or nil.
func (n *Node) ChildByName(name string) *Node {
	for _, c := range n.Children {
		if c.Element.Name == name {
			return c
		}
	}
	return nil
}

// Tree is an arena-style owner of the whole schema: column readers hold
// non-owning pointers into it, never their own copies.
type Tree struct {
	Root   *Node
	Leaves []*Node // in column-chunk order
}

// Build constructs a Tree by DFS over the flat Parquet schema array
// (elements[0] is the implicit root group; elements[1:] are its descendants
// in pre-order, each group's span determined by its NumChildren).
func Build(elements []format.SchemaElement) (*Tree, error) {
	if len(elements) == 0 {
		return nil, errors.New("schema: empty schema element list")
	}
	t := &Tree{}
	idx := 0
	root, err := buildNode(elements, &idx, nil, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	if idx != len(elements) {
		return nil, errors.Newf("schema: %d trailing schema elements not consumed", len(elements)-idx)
	}
	t.Root = root
	t.Leaves = collectLeaves(root, nil)
	for i, leaf := range t.Leaves {
		leaf.ColIdx = i
	}
	return t, nil
}

func buildNode(elements []format.SchemaElement, idx *int, parent *Node, parentMaxDef, parentMaxRep, parentIRA int) (*Node, error) {
	if *idx >= len(elements) {
		return nil, errors.New("schema: schema element list truncated")
	}
	elem := elements[*idx]
	*idx++

	n := &Node{Element: elem, ColIdx: -1, Parent: parent}

	maxDef := parentMaxDef
	maxRep := parentMaxRep
	ira := parentIRA

	// The root element carries no repetition type and contributes no
	// level increments of its own.
	if parent != nil {
		switch {
		case n.IsRepeated():
			maxDef++
			maxRep++
			ira = maxDef
		case n.IsOptional():
			maxDef++
		default: // REQUIRED
		}
	}
	if maxDef > maxLevel || maxRep > maxLevel {
		return nil, errors.Newf("schema: nesting exceeds %d-level cap at %q", maxLevel, elem.Name)
	}
	n.MaxDefLevel = maxDef
	n.MaxRepLevel = maxRep
	n.IRA = ira

	numChildren := 0
	if elem.NumChildren != nil {
		numChildren = int(*elem.NumChildren)
	}
	for i := 0; i < numChildren; i++ {
		child, err := buildNode(elements, idx, n, maxDef, maxRep, ira)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func collectLeaves(n *Node, out []*Node) []*Node {
	if n.IsLeaf() {
		return append(out, n)
	}
	for _, c := range n.Children {
		out = collectLeaves(c, out)
	}
	return out
}
