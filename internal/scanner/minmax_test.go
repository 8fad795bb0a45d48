package scanner

import (
	"encoding/binary"
	"testing"

	"github.com/janplus/Impala/internal/column"
	"github.com/janplus/Impala/internal/conjunct"
	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/valdecode"
)

func int32Bytes(v int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

func TestCanSkipRowGroupProvenEmpty(t *testing.T) {
	// Column 0 is INT32 with stats [10, 20]; conjunct requires < 5.
	physType := []format.PhysicalType{format.Int32}
	stats := []*format.Statistics{{MinValue: int32Bytes(10), MaxValue: int32Bytes(20)}}
	slotToColumn := []int{0}
	conjuncts := []conjunct.Evaluator{
		conjunct.Compare{Slot: 0, Op: conjunct.LT, Literal: valdecode.Value{Type: format.Int32, Int32: 5}},
	}
	if !CanSkipRowGroup(physType, stats, conjuncts, slotToColumn) {
		t.Fatal("expected the row group to be provably empty")
	}
}

func TestCanSkipRowGroupNotProven(t *testing.T) {
	physType := []format.PhysicalType{format.Int32}
	stats := []*format.Statistics{{MinValue: int32Bytes(10), MaxValue: int32Bytes(20)}}
	slotToColumn := []int{0}
	conjuncts := []conjunct.Evaluator{
		conjunct.Compare{Slot: 0, Op: conjunct.LT, Literal: valdecode.Value{Type: format.Int32, Int32: 15}},
	}
	if CanSkipRowGroup(physType, stats, conjuncts, slotToColumn) {
		t.Fatal("a conjunct whose literal falls inside [min,max] must never prove emptiness")
	}
}

func TestCanSkipRowGroupMissingStatsNeverProves(t *testing.T) {
	physType := []format.PhysicalType{format.Int32}
	stats := []*format.Statistics{nil}
	slotToColumn := []int{0}
	conjuncts := []conjunct.Evaluator{
		conjunct.Compare{Slot: 0, Op: conjunct.LT, Literal: valdecode.Value{Type: format.Int32, Int32: 5}},
	}
	if CanSkipRowGroup(physType, stats, conjuncts, slotToColumn) {
		t.Fatal("missing statistics must never prove emptiness")
	}
}

func TestCanSkipRowGroupNonCompareConjunctIgnored(t *testing.T) {
	physType := []format.PhysicalType{format.Int32}
	stats := []*format.Statistics{{MinValue: int32Bytes(10), MaxValue: int32Bytes(20)}}
	slotToColumn := []int{0}
	// andEvaluator is an Evaluator but not a conjunct.Compare, so it must
	// be skipped over rather than crashing the type assertion.
	conjuncts := []conjunct.Evaluator{andEvaluator{}}
	if CanSkipRowGroup(physType, stats, conjuncts, slotToColumn) {
		t.Fatal("a non-Compare evaluator must never be treated as range-provable")
	}
}

type andEvaluator struct{}

func (andEvaluator) Eval(_ column.Row) (bool, error) { return true, nil }
