package rle

import "testing"

func TestBitReaderRoundTrip(t *testing.T) {
	buf := packBits([]uint64{5, 3, 6}, 3)

	r := NewBitReader(buf)
	for i, want := range []uint64{5, 3, 6} {
		got, ok := r.GetValue(3)
		if !ok {
			t.Fatalf("value %d: unexpected end of stream", i)
		}
		if got != want {
			t.Fatalf("value %d: got %d, want %d", i, got, want)
		}
	}
}

func TestBitReaderExhaustion(t *testing.T) {
	r := NewBitReader([]byte{0xFF})
	if _, ok := r.GetValue(9); ok {
		t.Fatal("expected exhaustion reading 9 bits from a single byte")
	}
}

func TestBitReaderWidthZero(t *testing.T) {
	r := NewBitReader(nil)
	v, ok := r.GetValue(0)
	if !ok || v != 0 {
		t.Fatalf("width-0 read should always succeed with 0, got (%d, %v)", v, ok)
	}
}

func TestBitReaderGetBatch(t *testing.T) {
	buf := packBits([]uint64{1, 0, 1, 1}, 1)
	r := NewBitReader(buf)
	dst := make([]uint64, 4)
	n := r.GetBatch(dst, 1, 4)
	if n != 4 {
		t.Fatalf("got %d values, want 4", n)
	}
	want := []uint64{1, 0, 1, 1}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("value %d: got %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestBitReaderBytesConsumed(t *testing.T) {
	buf := packBits([]uint64{1, 2, 3}, 2)
	r := NewBitReader(buf)
	r.GetValue(2)
	if r.BytesConsumed() != 1 {
		t.Fatalf("after 2 bits of an 8-bit byte, want 1 consumed byte, got %d", r.BytesConsumed())
	}
}

// packBits is a test-only helper mirroring the LSB-first packing GetValue
// unpacks, built independently of BitReader so the round-trip test isn't
// circular.
func packBits(values []uint64, width uint) []byte {
	totalBits := int(width) * len(values)
	buf := make([]byte, (totalBits+7)/8)
	bitPos := 0
	for _, v := range values {
		for b := uint(0); b < width; b++ {
			if v&(1<<b) != 0 {
				buf[bitPos/8] |= 1 << (bitPos % 8)
			}
			bitPos++
		}
	}
	return buf
}
