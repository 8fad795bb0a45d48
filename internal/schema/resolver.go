package schema

import "github.com/cockroachdb/errors"

// ResolutionMode selects how top-level columns are matched: by_name or
// by_position. Only one is ever tried for a given resolver — the other is
// never attempted as a fallback.
type ResolutionMode int

const (
	ByName ResolutionMode = iota
	ByPosition
)

// StepKind distinguishes an ordinary struct-member path step from the
// synthetic markers ARRAY_ITEM, ARRAY_POS, MAP_KEY, and MAP_VALUE.
type StepKind int

const (
	StepField StepKind = iota
	StepArrayItem
	StepArrayPos
	StepMapKey
	StepMapValue
)

// Step is one segment of a logical column path.
type Step struct {
	Kind StepKind
	Name string // used for StepField
	Pos  int    // used for StepField under ByPosition mode
}

// Result is the outcome of resolving a logical path: a Node, or a missing
// field, or a pos field.
type Result struct {
	Node    *Node
	Missing bool
	PosField bool
}

// ErrInvalidPath is returned when a path step's marker doesn't match the
// node shape it's applied to (e.g. StepMapKey on a non-map group) — a
// caller/query-plan bug rather than a file-format error, since the query
// layer is supposed to have already checked the projected schema.
var ErrInvalidPath = errors.New("schema: path step does not match node shape")

// Resolver resolves logical column paths against a Tree.
type Resolver struct {
	tree *Tree
	mode ResolutionMode
}

// NewResolver constructs a Resolver over tree using mode for top-level
// column matching.
func NewResolver(tree *Tree, mode ResolutionMode) *Resolver {
	return &Resolver{tree: tree, mode: mode}
}

// Resolve walks path against the tree, returning the terminal SchemaNode,
// or Missing=true if a field step (top-level or nested) matched no child,
// or PosField=true if the
// path terminates in an ARRAY_POS marker.
func (r *Resolver) Resolve(path []Step) (Result, error) {
	if len(path) == 0 {
		return Result{}, errors.New("schema: empty logical path")
	}

	cur, ok := r.resolveTopLevel(path[0])
	if !ok {
		return Result{Missing: true}, nil
	}

	for _, step := range path[1:] {
		next, res, err := r.step(cur, step)
		if err != nil {
			return Result{}, err
		}
		if res.PosField || res.Missing {
			return res, nil
		}
		cur = next
	}
	return Result{Node: cur}, nil
}

func (r *Resolver) resolveTopLevel(step Step) (*Node, bool) {
	if step.Kind != StepField {
		return nil, false
	}
	switch r.mode {
	case ByPosition:
		if step.Pos < 0 || step.Pos >= len(r.tree.Root.Children) {
			return nil, false
		}
		return r.tree.Root.Children[step.Pos], true
	default: // ByName
		n := r.tree.Root.ChildByName(step.Name)
		return n, n != nil
	}
}

func (r *Resolver) step(cur *Node, step Step) (*Node, Result, error) {
	switch step.Kind {
	case StepField:
		child := cur.ChildByName(step.Name)
		if child == nil {
			return nil, Result{Missing: true}, nil
		}
		return child, Result{}, nil

	case StepArrayItem:
		item, ok := resolveListItem(cur)
		if !ok {
			return nil, Result{}, errors.Wrapf(ErrInvalidPath, "node %q is not list-shaped", cur.Element.Name)
		}
		return item, Result{}, nil

	case StepArrayPos:
		// ARRAY_POS resolves to the enclosing list node itself, flagged
		// PosField=true; it is later bound onto an existing scalar reader
		// in the same tuple rather than read directly, so no further
		// descent happens here.
		if _, ok := resolveListItem(cur); !ok {
			return nil, Result{}, errors.Wrapf(ErrInvalidPath, "node %q is not list-shaped", cur.Element.Name)
		}
		return nil, Result{Node: cur, PosField: true}, nil

	case StepMapKey:
		key, _, ok := resolveMapEntry(cur)
		if !ok {
			return nil, Result{}, errors.Wrapf(ErrInvalidPath, "node %q is not map-shaped", cur.Element.Name)
		}
		return key, Result{}, nil

	case StepMapValue:
		_, value, ok := resolveMapEntry(cur)
		if !ok {
			return nil, Result{}, errors.Wrapf(ErrInvalidPath, "node %q is not map-shaped", cur.Element.Name)
		}
		return value, Result{}, nil

	default:
		return nil, Result{}, errors.Newf("schema: unknown path step kind %d", step.Kind)
	}
}
