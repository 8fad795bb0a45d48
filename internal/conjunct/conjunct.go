// Package conjunct implements a minimal first-party evaluator for AND-composed
// scalar comparisons. Expression evaluation is treated as an external
// collaborator so a real query engine can still be plugged in, but the
// core needs something runnable on its own to drive the statistics-based
// row-group skip and its tests.
package conjunct

import (
	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/column"
	"github.com/janplus/Impala/internal/valdecode"
)

// Op is one of the six scalar comparison operators a Compare conjunct
// supports.
type Op int

const (
	LT Op = iota
	LE
	EQ
	GE
	GT
	NE
)

// Evaluator is the assembler-facing eval_conjuncts(row) -> bool surface,
// satisfied by Compare and by And.
type Evaluator interface {
	Eval(row column.Row) (bool, error)
}

// Compare is a single comparison against one scalar column's slot,
// composed with other conjuncts via AND by passing a slice to And.
type Compare struct {
	Slot    int
	Op      Op
	Literal valdecode.Value
}

// Eval implements Evaluator. A NULL slot never satisfies any comparison
// (standard SQL three-valued logic collapsed to a boolean here, since the
// assembler only needs pass/fail).
func (c Compare) Eval(row column.Row) (bool, error) {
	if c.Slot < 0 || c.Slot >= len(row) {
		return false, errors.Newf("conjunct: slot %d out of range for row of width %d", c.Slot, len(row))
	}
	slot := row[c.Slot]
	if slot.Null {
		return false, nil
	}
	cmp, err := valdecode.Compare(slot.Value, c.Literal)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case LT:
		return cmp < 0, nil
	case LE:
		return cmp <= 0, nil
	case EQ:
		return cmp == 0, nil
	case GE:
		return cmp >= 0, nil
	case GT:
		return cmp > 0, nil
	case NE:
		return cmp != 0, nil
	default:
		return false, errors.Newf("conjunct: unknown operator %d", c.Op)
	}
}

// ProvablyEmpty reports whether c can never be satisfied by any value in
// [min, max] (inclusive), the range test the statistics-based row-group
// skip needs without materializing a real row. A false result means "can't
// prove it" — the row group is still scanned.
func (c Compare) ProvablyEmpty(min, max valdecode.Value) (bool, error) {
	minCmp, err := valdecode.Compare(min, c.Literal)
	if err != nil {
		return false, nil // incomparable types: no proof either way
	}
	maxCmp, err := valdecode.Compare(max, c.Literal)
	if err != nil {
		return false, nil
	}
	switch c.Op {
	case LT:
		return minCmp >= 0, nil // every value >= min, and min >= literal
	case LE:
		return minCmp > 0, nil
	case EQ:
		return minCmp > 0 || maxCmp < 0, nil
	case GE:
		return maxCmp < 0, nil
	case GT:
		return maxCmp <= 0, nil
	case NE:
		return minCmp == 0 && maxCmp == 0, nil // range collapsed to the literal
	default:
		return false, nil
	}
}

// And evaluates a whole AND-composed conjunct list against row, short
// circuiting on the first conjunct that fails or errors.
func And(conjuncts []Evaluator, row column.Row) (bool, error) {
	for _, c := range conjuncts {
		ok, err := c.Eval(row)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
