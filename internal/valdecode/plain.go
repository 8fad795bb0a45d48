package valdecode

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/format"
)

// ErrShortWidth reports a plain-encoded value's declared width was <= 0 (a
// malformed fixed-length type_length, or a byte-array length prefix
// claiming a negative length).
var ErrShortWidth = errors.New("valdecode: plain decode width <= 0")

// PlainDecoder is a forward-only decoder over a PLAIN-encoded byte stream:
// each DecodeOne call advances the cursor by the encoded width and returns
// a typed value.
//
// fixedLen is the column's type_length for FIXED_LEN_BYTE_ARRAY (including
// DECIMAL backed by fixed-length bytes); it is ignored for every other
// physical type.
type PlainDecoder struct {
	data     []byte
	pos      int
	physType format.PhysicalType
	fixedLen int32
}

// NewPlainDecoder constructs a decoder over data for the given physical
// type.
func NewPlainDecoder(data []byte, physType format.PhysicalType, fixedLen int32) *PlainDecoder {
	return &PlainDecoder{data: data, physType: physType, fixedLen: fixedLen}
}

// Remaining reports how many bytes are left unconsumed.
func (p *PlainDecoder) Remaining() int { return len(p.data) - p.pos }

// DecodeOne decodes and returns the next value, advancing the cursor.
func (p *PlainDecoder) DecodeOne() (Value, error) {
	switch p.physType {
	case format.Boolean:
		// PLAIN-encoded booleans are bit-packed 1 bit per value, LSB first.
		// internal/column drives a dedicated rle.BitReader for these and
		// never constructs a PlainDecoder over a boolean stream.
		return Value{}, errors.New("valdecode: boolean PLAIN values decode via rle.BitReader, not PlainDecoder")
	case format.Int32:
		if p.pos+4 > len(p.data) {
			return Value{}, errors.Wrap(ErrShortWidth, "truncated INT32")
		}
		v := int32(binary.LittleEndian.Uint32(p.data[p.pos:]))
		p.pos += 4
		return Value{Type: p.physType, Int32: v}, nil
	case format.Int64:
		if p.pos+8 > len(p.data) {
			return Value{}, errors.Wrap(ErrShortWidth, "truncated INT64")
		}
		v := int64(binary.LittleEndian.Uint64(p.data[p.pos:]))
		p.pos += 8
		return Value{Type: p.physType, Int64: v}, nil
	case format.Int96:
		if p.pos+12 > len(p.data) {
			return Value{}, errors.Wrap(ErrShortWidth, "truncated INT96")
		}
		var out Value
		out.Type = p.physType
		copy(out.Int96[:], p.data[p.pos:p.pos+12])
		p.pos += 12
		return out, nil
	case format.Float:
		if p.pos+4 > len(p.data) {
			return Value{}, errors.Wrap(ErrShortWidth, "truncated FLOAT")
		}
		v := math.Float32frombits(binary.LittleEndian.Uint32(p.data[p.pos:]))
		p.pos += 4
		return Value{Type: p.physType, Float32: v}, nil
	case format.Double:
		if p.pos+8 > len(p.data) {
			return Value{}, errors.Wrap(ErrShortWidth, "truncated DOUBLE")
		}
		v := math.Float64frombits(binary.LittleEndian.Uint64(p.data[p.pos:]))
		p.pos += 8
		return Value{Type: p.physType, Float64: v}, nil
	case format.ByteArray:
		if p.pos+4 > len(p.data) {
			return Value{}, errors.Wrap(ErrShortWidth, "truncated BYTE_ARRAY length")
		}
		n := int32(binary.LittleEndian.Uint32(p.data[p.pos:]))
		p.pos += 4
		if n < 0 {
			return Value{}, errors.Wrap(ErrShortWidth, "negative BYTE_ARRAY length")
		}
		if p.pos+int(n) > len(p.data) {
			return Value{}, errors.Wrap(ErrShortWidth, "truncated BYTE_ARRAY payload")
		}
		b := p.data[p.pos : p.pos+int(n)]
		p.pos += int(n)
		return Value{Type: p.physType, Bytes: b}, nil
	case format.FixedLenByteArray:
		if p.fixedLen <= 0 {
			return Value{}, ErrShortWidth
		}
		n := int(p.fixedLen)
		if p.pos+n > len(p.data) {
			return Value{}, errors.Wrap(ErrShortWidth, "truncated FIXED_LEN_BYTE_ARRAY")
		}
		b := p.data[p.pos : p.pos+n]
		p.pos += n
		return Value{Type: p.physType, Bytes: b}, nil
	default:
		return Value{}, errors.Newf("valdecode: unknown physical type %d", p.physType)
	}
}

// DecodeBatch decodes up to n values, stopping early (with an error) on a
// malformed value, or early (without error) when the stream is exhausted.
func (p *PlainDecoder) DecodeBatch(dst []Value, n int) (int, error) {
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		if p.Remaining() <= 0 {
			return i, nil
		}
		v, err := p.DecodeOne()
		if err != nil {
			return i, err
		}
		dst[i] = v
	}
	return n, nil
}
