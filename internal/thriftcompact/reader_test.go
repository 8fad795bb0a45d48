package thriftcompact

import "testing"

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func appendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// i32Field encodes a short-form field header (delta 1-15) for an I32
// field at the given Thrift id, assuming the previous field id was 0,
// followed by the zigzag-varint value.
func i32Field(id int16, v int32) []byte {
	header := byte(id)<<4 | byte(TypeI32)
	buf := []byte{header}
	return appendUvarint(buf, zigzagEncode(int64(v)))
}

func TestReadStructSingleI32Field(t *testing.T) {
	buf := i32Field(1, 42)
	buf = append(buf, 0x00) // STOP
	r := NewReader(buf)
	st, err := r.ReadStruct()
	if err != nil {
		t.Fatal(err)
	}
	f := st.Get(1)
	if f == nil || f.Value.I32 != 42 {
		t.Fatalf("got %+v", f)
	}
}

func TestReadStructMultipleFieldsWithDeltaIDs(t *testing.T) {
	var buf []byte
	buf = append(buf, i32Field(1, 10)...)
	// field 3: delta = 3 - 1 = 2
	header := byte(2)<<4 | byte(TypeI32)
	buf = append(buf, header)
	buf = appendUvarint(buf, zigzagEncode(20))
	buf = append(buf, 0x00)

	r := NewReader(buf)
	st, err := r.ReadStruct()
	if err != nil {
		t.Fatal(err)
	}
	if st.Get(1).Value.I32 != 10 {
		t.Fatalf("field 1: got %+v", st.Get(1))
	}
	if st.Get(3).Value.I32 != 20 {
		t.Fatalf("field 3: got %+v", st.Get(3))
	}
}

func TestReadStructBooleanFields(t *testing.T) {
	var buf []byte
	buf = append(buf, byte(1)<<4|byte(TypeBoolTrue))
	buf = append(buf, byte(1)<<4|byte(TypeBoolFalse)) // delta 1 -> id 2
	buf = append(buf, 0x00)

	r := NewReader(buf)
	st, err := r.ReadStruct()
	if err != nil {
		t.Fatal(err)
	}
	if !st.Get(1).Value.Bool {
		t.Fatal("field 1 should decode true")
	}
	if st.Get(2).Value.Bool {
		t.Fatal("field 2 should decode false")
	}
}

func TestReadStructBinaryField(t *testing.T) {
	var buf []byte
	buf = append(buf, byte(1)<<4|byte(TypeBinary))
	buf = appendUvarint(buf, 5)
	buf = append(buf, "hello"...)
	buf = append(buf, 0x00)

	r := NewReader(buf)
	st, err := r.ReadStruct()
	if err != nil {
		t.Fatal(err)
	}
	if string(st.Get(1).Value.Binary) != "hello" {
		t.Fatalf("got %q", st.Get(1).Value.Binary)
	}
}

func TestReadStructNestedStruct(t *testing.T) {
	inner := i32Field(1, 7)
	inner = append(inner, 0x00)

	var buf []byte
	buf = append(buf, byte(1)<<4|byte(TypeStruct))
	buf = append(buf, inner...)
	buf = append(buf, 0x00)

	r := NewReader(buf)
	st, err := r.ReadStruct()
	if err != nil {
		t.Fatal(err)
	}
	nested := st.Get(1).Value.Struct
	if nested == nil || nested.Get(1).Value.I32 != 7 {
		t.Fatalf("got %+v", nested)
	}
}

func TestReadStructList(t *testing.T) {
	var buf []byte
	buf = append(buf, byte(1)<<4|byte(TypeList))
	buf = append(buf, byte(3)<<4|byte(TypeI32)) // size=3, elem type I32
	for _, v := range []int64{1, 2, 3} {
		buf = appendUvarint(buf, zigzagEncode(v))
	}
	buf = append(buf, 0x00)

	r := NewReader(buf)
	st, err := r.ReadStruct()
	if err != nil {
		t.Fatal(err)
	}
	list := st.Get(1).Value.List
	if len(list) != 3 || list[0].I32 != 1 || list[2].I32 != 3 {
		t.Fatalf("got %+v", list)
	}
}

func TestReadStructExplicitFieldID(t *testing.T) {
	var buf []byte
	buf = append(buf, byte(0)<<4|byte(TypeI32)) // delta=0 -> explicit id follows
	buf = appendUvarint(buf, zigzagEncode(100))
	buf = appendUvarint(buf, zigzagEncode(55))
	buf = append(buf, 0x00)

	r := NewReader(buf)
	st, err := r.ReadStruct()
	if err != nil {
		t.Fatal(err)
	}
	if st.Get(100) == nil || st.Get(100).Value.I32 != 55 {
		t.Fatalf("got %+v", st.Get(100))
	}
}

func TestReadStructTruncatedIsError(t *testing.T) {
	buf := []byte{byte(1)<<4 | byte(TypeI32)} // header present, varint value missing
	r := NewReader(buf)
	if _, err := r.ReadStruct(); err == nil {
		t.Fatal("expected an error decoding a truncated field value")
	}
}

func TestStructGetMissingFieldReturnsNil(t *testing.T) {
	st := &Struct{Fields: []Field{{ID: 1}}}
	if st.Get(99) != nil {
		t.Fatal("expected nil for a missing field ID")
	}
}

func TestStructGetOnNilStruct(t *testing.T) {
	var st *Struct
	if st.Get(1) != nil {
		t.Fatal("Get on a nil *Struct must return nil, not panic")
	}
}
