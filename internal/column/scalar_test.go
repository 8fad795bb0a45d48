package column

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/page"
	"github.com/janplus/Impala/internal/schema"
)

func zigzagEncode(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }

func appendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func appendI32Field(buf []byte, delta int, v int32) []byte {
	buf = append(buf, byte(delta)<<4|0x05)
	return appendUvarint(buf, zigzagEncode(int64(v)))
}

func appendStructField(buf []byte, delta int, body []byte) []byte {
	buf = append(buf, byte(delta)<<4|0x0C)
	buf = append(buf, body...)
	return append(buf, 0x00)
}

func buildDataPageHeaderBody(numValues, encoding int32) []byte {
	var buf []byte
	buf = appendI32Field(buf, 1, numValues)
	buf = appendI32Field(buf, 1, encoding)
	buf = appendI32Field(buf, 1, int32(format.EncodingRLE))
	buf = appendI32Field(buf, 1, int32(format.EncodingBitPacked))
	buf = append(buf, 0x00)
	return buf
}

func buildPageHeader(pageType, uncompSize, compSize int32, dataPageHeaderBody []byte) []byte {
	var buf []byte
	buf = appendI32Field(buf, 1, pageType)
	buf = appendI32Field(buf, 1, uncompSize)
	buf = appendI32Field(buf, 1, compSize)
	if dataPageHeaderBody != nil {
		buf = appendStructField(buf, 2, dataPageHeaderBody)
	}
	buf = append(buf, 0x00)
	return buf
}

func int32PlainBytes(vals ...int32) []byte {
	var buf []byte
	for _, v := range vals {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return buf
}

func newRequiredInt32Node() *schema.Node {
	return &schema.Node{
		Element:     format.SchemaElement{Type: format.Int32, HasType: true, Name: "id"},
		ColIdx:      0,
		MaxDefLevel: 0,
		MaxRepLevel: 0,
		IRA:         0,
	}
}

func newOptionalInt32Node() *schema.Node {
	return &schema.Node{
		Element:     format.SchemaElement{Type: format.Int32, HasType: true, Name: "n"},
		ColIdx:      0,
		MaxDefLevel: 1,
		MaxRepLevel: 0,
		IRA:         0,
	}
}

func TestScalarColumnReaderRequiredPlainInt32(t *testing.T) {
	values := int32PlainBytes(10, 20, 30)
	dph := buildDataPageHeaderBody(3, int32(format.EncodingPlain))
	header := buildPageHeader(int32(format.DataPage), int32(len(values)), int32(len(values)), dph)
	stream := append(append([]byte{}, header...), values...)

	meta := &format.ColumnMetaData{NumValues: 3, Codec: format.Uncompressed}
	cur := page.NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "", 1<<16)
	if err := cur.Init(); err != nil {
		t.Fatal(err)
	}

	r := NewScalarColumnReader(newRequiredInt32Node(), cur, 1024, 0)
	rows := make([]Row, 3)
	for i := range rows {
		rows[i] = make(Row, 1)
	}
	n, err := r.ReadNonRepeatedValueBatch(3, rows)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	want := []int32{10, 20, 30}
	for i, w := range want {
		if rows[i][0].Null {
			t.Fatalf("row %d unexpectedly null", i)
		}
		if rows[i][0].Value.Int32 != w {
			t.Fatalf("row %d = %d, want %d", i, rows[i][0].Value.Int32, w)
		}
	}
}

func TestScalarColumnReaderOptionalWithNulls(t *testing.T) {
	// 3 values: present, null, present. Def levels 1,0,1 (maxDefLevel=1),
	// built as three single-value RLE runs to get the exact pattern.
	var runs []byte
	appendRun := func(value byte, count int) {
		runs = appendUvarint(runs, uint64(count)<<1)
		runs = append(runs, value)
	}
	appendRun(1, 1)
	appendRun(0, 1)
	appendRun(1, 1)
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(runs)))
	levelSection := append(lenBuf, runs...)

	values := int32PlainBytes(100, 200) // only 2 actual values (one null)
	pagePayload := append(append([]byte{}, levelSection...), values...)

	dph := buildDataPageHeaderBody(3, int32(format.EncodingPlain))
	header := buildPageHeader(int32(format.DataPage), int32(len(pagePayload)), int32(len(pagePayload)), dph)
	stream := append(append([]byte{}, header...), pagePayload...)

	meta := &format.ColumnMetaData{NumValues: 3, Codec: format.Uncompressed}
	cur := page.NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "", 1<<16)
	if err := cur.Init(); err != nil {
		t.Fatal(err)
	}

	r := NewScalarColumnReader(newOptionalInt32Node(), cur, 1024, 0)
	rows := make([]Row, 3)
	for i := range rows {
		rows[i] = make(Row, 1)
	}
	n, err := r.ReadNonRepeatedValueBatch(3, rows)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	if rows[0][0].Null {
		t.Fatal("row 0 should be present")
	}
	if !rows[1][0].Null {
		t.Fatal("row 1 should be null")
	}
	if rows[0][0].Value.Int32 != 100 || rows[2][0].Value.Int32 != 200 {
		t.Fatalf("got %d, %d", rows[0][0].Value.Int32, rows[2][0].Value.Int32)
	}
}

func TestScalarColumnReaderCharPadding(t *testing.T) {
	values := make([]byte, 4)
	binary.LittleEndian.PutUint32(values, 2)
	values = append(values, "ab"...)
	dph := buildDataPageHeaderBody(1, int32(format.EncodingPlain))
	header := buildPageHeader(int32(format.DataPage), int32(len(values)), int32(len(values)), dph)
	stream := append(append([]byte{}, header...), values...)

	meta := &format.ColumnMetaData{NumValues: 1, Codec: format.Uncompressed}
	cur := page.NewCursor(bytes.NewReader(stream), meta, format.ByteArray, 0, "", 1<<16)
	if err := cur.Init(); err != nil {
		t.Fatal(err)
	}

	node := &schema.Node{
		Element:     format.SchemaElement{Type: format.ByteArray, HasType: true, Name: "c"},
		ColIdx:      0,
		MaxDefLevel: 0,
		MaxRepLevel: 0,
	}
	r := NewScalarColumnReader(node, cur, 1024, 0, WithCharLen(5))
	rows := []Row{make(Row, 1)}
	n, err := r.ReadNonRepeatedValueBatch(1, rows)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("n = %d, want 1", n)
	}
	if string(rows[0][0].Value.Bytes) != "ab   " {
		t.Fatalf("got %q, want padded to 5 bytes", rows[0][0].Value.Bytes)
	}
}
