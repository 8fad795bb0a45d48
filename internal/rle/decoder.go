package rle

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// maxSupportedValueCount bounds a single RLE run's repeat count, a
// defensive ceiling to keep a corrupt header from claiming an implausible
// run length.
const maxSupportedValueCount = 16 * 1024 * 1024

// ErrInvalidStream is returned for a structurally malformed RLE/bit-packed
// stream (bad varint, truncated run, implausible run length).
var ErrInvalidStream = errors.New("rle: invalid run-length stream")

// Decoder decodes Parquet's hybrid RLE/bit-packed encoding: a sequence of
// runs, each either a literal repeated value (RLE) or a bit-packed group of
// 8*count values, each packed to bitWidth bits. bitWidth can go up to 32,
// not just the <=8 a levels-only decoder would need, so the same decoder
// also drives PLAIN_DICTIONARY / RLE_DICTIONARY index streams.
type Decoder struct {
	src      []byte
	pos      int
	bitWidth uint

	// current run state
	runRemaining int
	runIsPacked  bool
	rleValue     uint64
	packed       *BitReader
}

// NewDecoder constructs a decoder over src with the given bit width. A
// bitWidth of 0 means every decoded value is implicitly 0, consuming no
// bytes — the correct behavior for a max_level==0 column, which carries no
// level stream at all.
func NewDecoder(src []byte, bitWidth uint) *Decoder {
	return &Decoder{src: src, bitWidth: bitWidth}
}

func (d *Decoder) readUvarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		if d.pos >= len(d.src) {
			return 0, ErrInvalidStream
		}
		b := d.src[d.pos]
		d.pos++
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, ErrInvalidStream
		}
	}
}

// nextRun advances to the next RLE/bit-packed run header. Returns false at
// end of stream.
func (d *Decoder) nextRun() (bool, error) {
	if d.pos >= len(d.src) {
		return false, nil
	}
	header, err := d.readUvarint()
	if err != nil {
		return false, err
	}
	count := header >> 1
	bitPacked := header&1 != 0
	if count == 0 || count > maxSupportedValueCount {
		return false, errors.Wrapf(ErrInvalidStream, "implausible run count %d", count)
	}

	if bitPacked {
		groups := count
		numValues := int(groups * 8)
		byteCount := (uint64(numValues)*uint64(d.bitWidth) + 7) / 8
		if d.pos+int(byteCount) > len(d.src) {
			return false, errors.Wrap(ErrInvalidStream, "truncated bit-packed run")
		}
		d.packed = NewBitReader(d.src[d.pos : d.pos+int(byteCount)])
		d.pos += int(byteCount)
		d.runIsPacked = true
		d.runRemaining = numValues
		return true, nil
	}

	numValues := int(count)
	byteWidth := int((d.bitWidth + 7) / 8)
	var value uint64
	if byteWidth > 0 {
		if d.pos+byteWidth > len(d.src) {
			return false, errors.Wrap(ErrInvalidStream, "truncated RLE run value")
		}
		var buf [4]byte
		copy(buf[:], d.src[d.pos:d.pos+byteWidth])
		value = uint64(binary.LittleEndian.Uint32(buf[:]))
		d.pos += byteWidth
	}
	d.runIsPacked = false
	d.rleValue = value
	d.runRemaining = numValues
	return true, nil
}

// Next decodes one value. ok is false at end of stream.
func (d *Decoder) Next() (uint64, bool, error) {
	if d.bitWidth == 0 {
		return 0, true, nil
	}
	for d.runRemaining == 0 {
		has, err := d.nextRun()
		if err != nil {
			return 0, false, err
		}
		if !has {
			return 0, false, nil
		}
	}
	d.runRemaining--
	if d.runIsPacked {
		v, ok := d.packed.GetValue(d.bitWidth)
		if !ok {
			return 0, false, errors.Wrap(ErrInvalidStream, "bit-packed run exhausted early")
		}
		return v, true, nil
	}
	return d.rleValue, true, nil
}

// NextBatch decodes up to n values into dst, returning the count actually
// produced (n is capped at len(dst); fewer at end of stream).
func (d *Decoder) NextBatch(dst []uint64, n int) (int, error) {
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		v, ok, err := d.Next()
		if err != nil {
			return i, err
		}
		if !ok {
			return i, nil
		}
		dst[i] = v
	}
	return n, nil
}

// BitWidthForMaxLevel computes ⌈log2(maxLevel+1)⌉, the bit width a level
// stream needs to represent every value from 0 to maxLevel.
func BitWidthForMaxLevel(maxLevel int) uint {
	if maxLevel <= 0 {
		return 0
	}
	width := uint(0)
	for (1 << width) < (maxLevel + 1) {
		width++
	}
	return width
}
