package page

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/janplus/Impala/internal/format"
)

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

// appendI32Field appends a short-form I32 field header (delta from
// prevID) plus its zigzag-varint value.
func appendI32Field(buf []byte, delta int, v int32) []byte {
	buf = append(buf, byte(delta)<<4|0x05)
	return appendUvarint(buf, zigzagEncode(int64(v)))
}

func appendStructField(buf []byte, delta int, body []byte) []byte {
	buf = append(buf, byte(delta)<<4|0x0C)
	buf = append(buf, body...)
	return append(buf, 0x00)
}

// buildPageHeader builds the compact-protocol bytes for a PageHeader
// struct: field1=type, field2=uncompressed size, field3=compressed size,
// and optionally a nested DataPageHeader (field5) or DictionaryPageHeader
// (field7).
func buildPageHeader(pageType, uncompSize, compSize int32, nested []byte, nestedFieldID int) []byte {
	var buf []byte
	buf = appendI32Field(buf, 1, pageType)
	buf = appendI32Field(buf, 1, uncompSize)
	buf = appendI32Field(buf, 1, compSize)
	if nested != nil {
		delta := nestedFieldID - 3
		buf = appendStructField(buf, delta, nested)
	}
	buf = append(buf, 0x00)
	return buf
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

func buildDictionaryPageHeaderBody(numValues, encoding int32) []byte {
	var buf []byte
	buf = appendI32Field(buf, 1, numValues)
	buf = appendI32Field(buf, 1, encoding)
	buf = append(buf, 0x00)
	return buf
}

func TestCursorInitNoDictionary(t *testing.T) {
	meta := &format.ColumnMetaData{NumValues: 0, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(nil), meta, format.Int32, 0, "", 1<<16)
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if c.Dictionary() != nil {
		t.Fatal("expected no dictionary decoder")
	}
}

func TestCursorInitDictionaryOnBooleanIsError(t *testing.T) {
	off := int64(0)
	meta := &format.ColumnMetaData{DictionaryPageOffset: &off, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(nil), meta, format.Boolean, 0, "", 1<<16)
	if err := c.Init(); err != ErrDictionaryOnBoolean {
		t.Fatalf("got %v, want ErrDictionaryOnBoolean", err)
	}
}

func int32PlainBytes(vals ...int32) []byte {
	var buf []byte
	for _, v := range vals {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return buf
}

func TestCursorInitDictionaryPlain(t *testing.T) {
	dictValues := int32PlainBytes(10, 20, 30)
	header := buildPageHeader(int32(format.DictionaryPage), int32(len(dictValues)), int32(len(dictValues)),
		buildDictionaryPageHeaderBody(3, int32(format.EncodingPlain)), 7)

	stream := append(append([]byte{}, header...), dictValues...)

	off := int64(0)
	meta := &format.ColumnMetaData{DictionaryPageOffset: &off, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "", 1<<16)
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if c.Dictionary() == nil {
		t.Fatal("expected a dictionary decoder")
	}
}

func TestCursorInitDictionaryUnboundedUnderWriterQuirk(t *testing.T) {
	dictValues := int32PlainBytes(1, 2, 3, 4)
	header := buildPageHeader(int32(format.DictionaryPage), int32(len(dictValues)), int32(len(dictValues)), nil, 0)
	stream := append(append([]byte{}, header...), dictValues...)

	off := int64(0)
	meta := &format.ColumnMetaData{DictionaryPageOffset: &off, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "impala version 1.1.0", 1<<16)
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if c.Dictionary() == nil {
		t.Fatal("expected a dictionary decoder under the writer-quirk fallback")
	}
}

func TestCursorInitDictionaryMissingHeaderOnUnknownWriterIsError(t *testing.T) {
	dictValues := int32PlainBytes(1, 2)
	header := buildPageHeader(int32(format.DictionaryPage), int32(len(dictValues)), int32(len(dictValues)), nil, 0)
	stream := append(append([]byte{}, header...), dictValues...)

	off := int64(0)
	meta := &format.ColumnMetaData{DictionaryPageOffset: &off, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "parquet-mr version 1.8.0", 1<<16)
	if err := c.Init(); err == nil {
		t.Fatal("expected an error for a missing dictionary header on a non-quirky writer")
	}
}

func TestCursorReadNextDataPage(t *testing.T) {
	payload := []byte("some page bytes")
	header := buildPageHeader(int32(format.DataPage), int32(len(payload)), int32(len(payload)),
		buildDataPageHeaderBody(5, int32(format.EncodingPlain)), 5)
	stream := append(append([]byte{}, header...), payload...)

	meta := &format.ColumnMetaData{NumValues: 5, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "", 1<<16)
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	hdr, data, err := c.ReadNextDataPage()
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Type != format.DataPage {
		t.Fatalf("Type = %v", hdr.Type)
	}
	if string(data) != string(payload) {
		t.Fatalf("data = %q, want %q", data, payload)
	}
	if c.RemainingInPage() != 5 || c.CumulativeValuesRead() != 5 {
		t.Fatalf("remaining=%d cumulative=%d", c.RemainingInPage(), c.CumulativeValuesRead())
	}
	if !c.AtColumnEnd() {
		t.Fatal("expected AtColumnEnd after reading the declared value count")
	}

	if _, _, err := c.ReadNextDataPage(); err != io.EOF {
		t.Fatalf("second read: got %v, want io.EOF", err)
	}
}

func TestCursorReadNextDataPageSkipsIndexPage(t *testing.T) {
	indexHeader := buildPageHeader(int32(format.IndexPage), 4, 4, nil, 0)
	indexBody := []byte{1, 2, 3, 4}

	payload := []byte("data")
	dataHeader := buildPageHeader(int32(format.DataPage), int32(len(payload)), int32(len(payload)),
		buildDataPageHeaderBody(1, int32(format.EncodingPlain)), 5)

	var stream []byte
	stream = append(stream, indexHeader...)
	stream = append(stream, indexBody...)
	stream = append(stream, dataHeader...)
	stream = append(stream, payload...)

	meta := &format.ColumnMetaData{NumValues: 1, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "", 1<<16)
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	hdr, data, err := c.ReadNextDataPage()
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Type != format.DataPage || string(data) != "data" {
		t.Fatalf("got type=%v data=%q", hdr.Type, data)
	}
}

func TestCursorCumulativeMismatchOnShortColumn(t *testing.T) {
	payload := []byte("xy")
	header := buildPageHeader(int32(format.DataPage), int32(len(payload)), int32(len(payload)),
		buildDataPageHeaderBody(2, int32(format.EncodingPlain)), 5)
	stream := append(append([]byte{}, header...), payload...)

	meta := &format.ColumnMetaData{NumValues: 10, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "", 1<<16)
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.ReadNextDataPage(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.ReadNextDataPage(); !errors.Is(err, ErrCumulativeMismatch) {
		t.Fatalf("got %v, want ErrCumulativeMismatch (declared 10, got 2)", err)
	}
}

func TestConsumeFromPageClampsAtZero(t *testing.T) {
	payload := []byte("z")
	header := buildPageHeader(int32(format.DataPage), int32(len(payload)), int32(len(payload)),
		buildDataPageHeaderBody(1, int32(format.EncodingPlain)), 5)
	stream := append(append([]byte{}, header...), payload...)

	meta := &format.ColumnMetaData{NumValues: 1, Codec: format.Uncompressed}
	c := NewCursor(bytes.NewReader(stream), meta, format.Int32, 0, "", 1<<16)
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.ReadNextDataPage(); err != nil {
		t.Fatal(err)
	}
	c.ConsumeFromPage(100)
	if c.RemainingInPage() != 0 {
		t.Fatalf("RemainingInPage = %d, want 0", c.RemainingInPage())
	}
}
