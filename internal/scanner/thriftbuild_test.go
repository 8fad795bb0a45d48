package scanner

// A minimal Thrift compact-protocol struct builder used only to construct
// byte-accurate footer fixtures for end-to-end tests, without depending on
// a real parquet-mr-written file.

func zigzagEncode(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }

func appendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

const (
	tBool      = 0x01
	tBoolFalse = 0x02
	tI32       = 0x05
	tI64       = 0x06
	tBinary    = 0x08
	tList      = 0x09
	tStruct    = 0x0C
)

// tbuilder accumulates one Thrift struct's fields, tracking the previous
// field ID to emit short-form delta headers.
type tbuilder struct {
	buf    []byte
	prevID int16
}

func (b *tbuilder) header(id int16, typ byte) {
	delta := int(id) - int(b.prevID)
	if delta > 0 && delta <= 15 {
		b.buf = append(b.buf, byte(delta)<<4|typ)
	} else {
		b.buf = append(b.buf, byte(0)<<4|typ)
		b.buf = appendUvarint(b.buf, zigzagEncode(int64(id)))
	}
	b.prevID = id
}

func (b *tbuilder) i32(id int16, v int32) {
	b.header(id, tI32)
	b.buf = appendUvarint(b.buf, zigzagEncode(int64(v)))
}

func (b *tbuilder) i64(id int16, v int64) {
	b.header(id, tI64)
	b.buf = appendUvarint(b.buf, zigzagEncode(v))
}

func (b *tbuilder) str(id int16, v string) {
	b.header(id, tBinary)
	b.buf = appendUvarint(b.buf, uint64(len(v)))
	b.buf = append(b.buf, v...)
}

// structField appends a nested struct field whose body is already finished
// (i.e. inner.bytes() was already called and included the STOP byte).
func (b *tbuilder) structField(id int16, inner *tbuilder) {
	b.header(id, tStruct)
	b.buf = append(b.buf, inner.bytes()...)
}

// listElemHeader writes a list/set header: size (short form, <15) or size 15
// plus a trailing varint size, followed by the element type nibble.
func listElemHeader(buf []byte, size int, elemType byte) []byte {
	if size < 15 {
		return append(buf, byte(size)<<4|elemType)
	}
	buf = append(buf, 0xF0|elemType)
	return appendUvarint(buf, uint64(size))
}

func (b *tbuilder) listStructs(id int16, elems []*tbuilder) {
	b.header(id, tList)
	b.buf = listElemHeader(b.buf, len(elems), tStruct)
	for _, e := range elems {
		b.buf = append(b.buf, e.bytes()...)
	}
}

func (b *tbuilder) listI32(id int16, vals []int32) {
	b.header(id, tList)
	b.buf = listElemHeader(b.buf, len(vals), tI32)
	for _, v := range vals {
		b.buf = appendUvarint(b.buf, zigzagEncode(int64(v)))
	}
}

func (b *tbuilder) listStr(id int16, vals []string) {
	b.header(id, tList)
	b.buf = listElemHeader(b.buf, len(vals), tBinary)
	for _, v := range vals {
		b.buf = appendUvarint(b.buf, uint64(len(v)))
		b.buf = append(b.buf, v...)
	}
}

// bytes finalizes the struct, appending the STOP byte.
func (b *tbuilder) bytes() []byte {
	return append(append([]byte{}, b.buf...), 0x00)
}
