package thriftcompact

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// ErrTruncated is returned when the byte slice runs out before a value is
// fully decoded. Callers that are probing an unknown-length buffer (the
// page-header peek-growth loop) treat this as "read more and retry", not
// as a terminal parse error.
var ErrTruncated = errors.New("thriftcompact: truncated input")

// Reader decodes a sequence of Thrift compact-protocol structs from a byte
// slice. It never allocates more structure than what it decodes: containers
// are fixed-size Go slices sized from the wire-declared count.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps buf for decoding, starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{data: buf}
}

// Pos reports how many bytes have been consumed so far.
func (r *Reader) Pos() int { return r.pos }

func (r *Reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrTruncated
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, ErrTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// readUvarint reads an unsigned LEB128 varint, as used for container
// lengths and (after zigzag decoding) signed integers.
func (r *Reader) readUvarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, errors.New("thriftcompact: varint overflow")
		}
	}
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

func (r *Reader) readZigzag() (int64, error) {
	u, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

func (r *Reader) readDouble() (float64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (r *Reader) readBinary() ([]byte, error) {
	n, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	return r.readBytes(int(n))
}

// ReadStruct decodes one struct: a run of field headers terminated by a
// STOP byte (0x00). Field IDs are tracked as a running delta per the
// compact-protocol rule: a non-zero header nibble is id = prevID + delta;
// a zero nibble means an explicit zigzag-varint ID follows.
func (r *Reader) ReadStruct() (*Struct, error) {
	st := &Struct{}
	var prevID int16
	for {
		header, err := r.readByte()
		if err != nil {
			return nil, err
		}
		if header == 0x00 {
			return st, nil
		}
		delta := (header >> 4) & 0x0F
		wireType := Type(header & 0x0F)

		var id int16
		if delta == 0 {
			ext, err := r.readZigzag()
			if err != nil {
				return nil, err
			}
			id = int16(ext)
		} else {
			id = prevID + int16(delta)
		}
		prevID = id

		val, err := r.readValue(wireType)
		if err != nil {
			return nil, errors.Wrapf(err, "thriftcompact: field %d", id)
		}
		st.Fields = append(st.Fields, Field{ID: id, Type: wireType, Value: val})
	}
}

func (r *Reader) readValue(t Type) (Value, error) {
	switch t {
	case TypeBoolTrue:
		return Value{Bool: true}, nil
	case TypeBoolFalse:
		return Value{Bool: false}, nil
	case TypeByte:
		b, err := r.readByte()
		return Value{Byte: int8(b)}, err
	case TypeI16:
		v, err := r.readZigzag()
		return Value{I16: int16(v)}, err
	case TypeI32:
		v, err := r.readZigzag()
		return Value{I32: int32(v)}, err
	case TypeI64:
		v, err := r.readZigzag()
		return Value{I64: v}, err
	case TypeDouble:
		v, err := r.readDouble()
		return Value{Double: v}, err
	case TypeBinary:
		b, err := r.readBinary()
		return Value{Binary: b}, err
	case TypeStruct:
		s, err := r.ReadStruct()
		return Value{Struct: s}, err
	case TypeList, TypeSet:
		return r.readList()
	case TypeMap:
		return r.readMap()
	default:
		return Value{}, errors.Newf("thriftcompact: unsupported wire type %d", t)
	}
}

// readList decodes both LIST and SET containers (SET shares the LIST wire
// format in the compact protocol).
func (r *Reader) readList() (Value, error) {
	header, err := r.readByte()
	if err != nil {
		return Value{}, err
	}
	size := int(header>>4) & 0x0F
	elemType := Type(header & 0x0F)
	if size == 0x0F {
		n, err := r.readUvarint()
		if err != nil {
			return Value{}, err
		}
		size = int(n)
	}
	if size < 0 || size > 16*1024*1024 {
		return Value{}, errors.Newf("thriftcompact: implausible list size %d", size)
	}
	elems := make([]Value, 0, size)
	for i := 0; i < size; i++ {
		if elemType == TypeBoolTrue || elemType == TypeBoolFalse {
			b, err := r.readByte()
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, Value{Bool: b == 0x01})
			continue
		}
		v, err := r.readValue(elemType)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return Value{List: elems, ListElemType: elemType}, nil
}

func (r *Reader) readMap() (Value, error) {
	n, err := r.readUvarint()
	if err != nil {
		return Value{}, err
	}
	if n == 0 {
		return Value{}, nil
	}
	kvHeader, err := r.readByte()
	if err != nil {
		return Value{}, err
	}
	keyType := Type(kvHeader >> 4)
	valType := Type(kvHeader & 0x0F)
	size := int(n)
	if size < 0 || size > 16*1024*1024 {
		return Value{}, errors.Newf("thriftcompact: implausible map size %d", size)
	}
	keys := make([]Value, 0, size)
	vals := make([]Value, 0, size)
	for i := 0; i < size; i++ {
		k, err := r.readValue(keyType)
		if err != nil {
			return Value{}, err
		}
		v, err := r.readValue(valType)
		if err != nil {
			return Value{}, err
		}
		keys = append(keys, k)
		vals = append(vals, v)
	}
	return Value{MapKeys: keys, MapVals: vals}, nil
}
