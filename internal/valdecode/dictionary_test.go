package valdecode

import (
	"encoding/binary"
	"testing"

	"github.com/janplus/Impala/internal/format"
)

func int32PlainBytes(values ...int32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func TestNewDictionaryDecoder(t *testing.T) {
	data := int32PlainBytes(10, 20, 30)
	dd, err := NewDictionaryDecoder(data, format.Int32, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if dd.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", dd.Count())
	}
	v, err := dd.Get(1)
	if err != nil || v.Int32 != 20 {
		t.Fatalf("Get(1): got (%+v, %v)", v, err)
	}
}

func TestDictionaryDecoderOutOfRange(t *testing.T) {
	data := int32PlainBytes(1)
	dd, err := NewDictionaryDecoder(data, format.Int32, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dd.Get(5); err == nil {
		t.Fatal("expected ErrDictionaryIndexOutOfRange")
	}
}

func TestNewDictionaryDecoderCountMismatch(t *testing.T) {
	data := int32PlainBytes(1, 2)
	if _, err := NewDictionaryDecoder(data, format.Int32, 0, 3); err == nil {
		t.Fatal("expected an error when declared count exceeds decodable entries")
	}
}

func TestNewDictionaryDecoderUnbounded(t *testing.T) {
	data := int32PlainBytes(7, 8, 9)
	dd, err := NewDictionaryDecoderUnbounded(data, format.Int32, 0)
	if err != nil {
		t.Fatal(err)
	}
	if dd.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", dd.Count())
	}
	v, err := dd.Get(2)
	if err != nil || v.Int32 != 9 {
		t.Fatalf("Get(2): got (%+v, %v)", v, err)
	}
}
