package valdecode

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/format"
)

// ErrIncomparableType reports that a comparison was requested against a
// physical type this reader doesn't know how to order.
var ErrIncomparableType = errors.New("valdecode: incomparable physical type")

// Compare orders a and b, which must share the same Type, returning a
// negative, zero, or positive result the way bytes.Compare does. This is
// the single typed comparator both the statistics-based row-group skip
// (internal/scanner/minmax.go) and the built-in conjunct evaluator
// (internal/conjunct) are built on, mirroring how minmax-value.h and
// slot-ref.h share one per-type switch rather than each reimplementing it.
func Compare(a, b Value) (int, error) {
	if a.Type != b.Type {
		return 0, errors.Newf("valdecode: comparing mismatched types %d and %d", a.Type, b.Type)
	}
	switch a.Type {
	case format.Boolean:
		switch {
		case a.Bool == b.Bool:
			return 0, nil
		case !a.Bool && b.Bool:
			return -1, nil
		default:
			return 1, nil
		}
	case format.Int32:
		switch {
		case a.Int32 < b.Int32:
			return -1, nil
		case a.Int32 > b.Int32:
			return 1, nil
		default:
			return 0, nil
		}
	case format.Int64, format.Int96:
		// INT96 is never meaningfully ordered as a raw integer (it is a
		// legacy timestamp encoding — compare its decoded Int64 fields is
		// undefined); callers compare INT96 columns via Time instead.
		if a.Type == format.Int96 {
			return 0, errors.Wrap(ErrIncomparableType, "INT96")
		}
		switch {
		case a.Int64 < b.Int64:
			return -1, nil
		case a.Int64 > b.Int64:
			return 1, nil
		default:
			return 0, nil
		}
	case format.Float:
		switch {
		case a.Float32 < b.Float32:
			return -1, nil
		case a.Float32 > b.Float32:
			return 1, nil
		default:
			return 0, nil
		}
	case format.Double:
		switch {
		case a.Float64 < b.Float64:
			return -1, nil
		case a.Float64 > b.Float64:
			return 1, nil
		default:
			return 0, nil
		}
	case format.ByteArray, format.FixedLenByteArray:
		return bytes.Compare(a.Bytes, b.Bytes), nil
	default:
		return 0, errors.Wrapf(ErrIncomparableType, "type %d", a.Type)
	}
}
