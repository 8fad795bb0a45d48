// Package valdecode implements the PLAIN and dictionary value decoders,
// plus the CHAR(n) and legacy-timestamp conversions applied after decode.
package valdecode

import (
	"time"

	"github.com/janplus/Impala/internal/format"
)

// Value is a decoded column value. Only the field matching Type is
// meaningful. Using one tagged struct (rather than Go's `any`/interface{})
// keeps the hot materialization loop in internal/column allocation-free for
// fixed-size physical types; only ByteArray/FixedLenByteArray touch the
// heap, via Bytes.
type Value struct {
	Type    format.PhysicalType
	Bool    bool
	Int32   int32
	Int64   int64
	Int96   [12]byte
	Float32 float32
	Float64 float64
	Bytes   []byte

	// Time is populated for INT96 values once converted from the legacy
	// UTC convention to local wall-clock time; Int96 still carries the
	// original raw bytes either way.
	Time      time.Time
	HasTime   bool
}
