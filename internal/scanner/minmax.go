package scanner

import (
	"github.com/janplus/Impala/internal/conjunct"
	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/valdecode"
)

// columnMinMax decodes a column chunk's min/max statistics as typed
// values, mirroring minmax-value.h's per-type switch: numeric types decode
// via the PLAIN wire format they're already stored in, and
// BYTE_ARRAY/FIXED_LEN_BYTE_ARRAY compare lexicographically via their raw
// bytes. ok is false when statistics are absent or the physical type isn't
// one this comparator understands.
func columnMinMax(physType format.PhysicalType, stats *format.Statistics) (min, max valdecode.Value, ok bool) {
	if stats == nil {
		return valdecode.Value{}, valdecode.Value{}, false
	}
	minBytes := stats.MinValue
	if minBytes == nil {
		minBytes = stats.Min
	}
	maxBytes := stats.MaxValue
	if maxBytes == nil {
		maxBytes = stats.Max
	}
	if minBytes == nil || maxBytes == nil {
		return valdecode.Value{}, valdecode.Value{}, false
	}
	switch physType {
	case format.Int32, format.Int64, format.Float, format.Double, format.ByteArray, format.FixedLenByteArray:
	default:
		return valdecode.Value{}, valdecode.Value{}, false
	}
	minV, err := decodeStatValue(physType, minBytes)
	if err != nil {
		return valdecode.Value{}, valdecode.Value{}, false
	}
	maxV, err := decodeStatValue(physType, maxBytes)
	if err != nil {
		return valdecode.Value{}, valdecode.Value{}, false
	}
	return minV, maxV, true
}

func decodeStatValue(physType format.PhysicalType, b []byte) (valdecode.Value, error) {
	dec := valdecode.NewPlainDecoder(b, physType, int32(len(b)))
	return dec.DecodeOne()
}

// CanSkipRowGroup reports whether at least one provided conjunct can be
// proven unsatisfiable against colStats' [min, max] range, meaning the row
// group is provably empty of matches and can be skipped without ever
// reading a column chunk. Any conjunct this comparator can't reason about
// (BOOLEAN or INT96 column, no statistics, or not a range-provable evaluator) is
// simply skipped over — this check can only ever prove emptiness, never
// prove non-emptiness; it is a hint, never a source of error.
func CanSkipRowGroup(colPhysType []format.PhysicalType, colStats []*format.Statistics, conjuncts []conjunct.Evaluator, slotToColumn []int) bool {
	for _, c := range conjuncts {
		cmp, ok := c.(conjunct.Compare)
		if !ok {
			continue
		}
		if cmp.Slot < 0 || cmp.Slot >= len(slotToColumn) {
			continue
		}
		colIdx := slotToColumn[cmp.Slot]
		if colIdx < 0 || colIdx >= len(colStats) {
			continue
		}
		min, max, ok := columnMinMax(colPhysType[colIdx], colStats[colIdx])
		if !ok {
			continue
		}
		empty, err := cmp.ProvablyEmpty(min, max)
		if err != nil {
			continue
		}
		if empty {
			return true
		}
	}
	return false
}
