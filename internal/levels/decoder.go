// Package levels implements a batched cache of definition or repetition
// levels for one column, one page at a time.
package levels

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/rle"
)

// ErrLevelOutOfRange reports a decoded level exceeding max_level.
var ErrLevelOutOfRange = errors.New("levels: decoded level exceeds max_level")

// Decoder caches a batch of definition or repetition levels per column per
// page. The cache is a byte array (nesting depth is bounded to <=255, so
// levels fit in a byte), filled one decoded level at a time.
type Decoder struct {
	maxLevel int
	bitWidth uint

	cache    []byte
	cacheLen int
	cursor   int

	rle  *rle.Decoder
	bits *rle.BitReader
}

// New constructs a Decoder with a preallocated cache of the given capacity
// (the scanner's configured batch size, allocated once per column).
func New(capacity int) *Decoder {
	return &Decoder{cache: make([]byte, capacity)}
}

// Init consumes this page's level header from data and positions the
// decoder to produce up to numBufferedValues levels. For RLE encoding, it
// consumes a 4-byte little-endian length prefix then that many bytes; for
// BIT_PACKED it consumes ceil(numBufferedValues/8) bytes. Returns the
// number of bytes consumed from data so the caller can advance its cursor
// past the level section.
func (d *Decoder) Init(encoding format.Encoding, maxLevel int, numBufferedValues int, data []byte) (consumed int, err error) {
	d.maxLevel = maxLevel
	d.bitWidth = rle.BitWidthForMaxLevel(maxLevel)
	d.cacheLen = 0
	d.cursor = 0

	if maxLevel == 0 {
		// No bytes consumed; cache serves zeros on demand.
		d.rle = nil
		return 0, nil
	}

	switch encoding {
	case format.EncodingRLE:
		if len(data) < 4 {
			return 0, errors.New("levels: truncated RLE level length prefix")
		}
		length := int(binary.LittleEndian.Uint32(data[0:4]))
		if length < 0 || 4+length > len(data) {
			return 0, errors.Newf("levels: invalid RLE level section length %d", length)
		}
		d.rle = rle.NewDecoder(data[4:4+length], d.bitWidth)
		d.bits = nil
		return 4 + length, nil
	case format.EncodingBitPacked:
		nbytes := (numBufferedValues + 7) / 8
		if nbytes > len(data) {
			return 0, errors.New("levels: truncated BIT_PACKED level section")
		}
		d.rle = nil
		d.bits = rle.NewBitReader(data[:nbytes])
		return nbytes, nil
	default:
		return 0, errors.Newf("levels: unsupported level encoding %d", encoding)
	}
}

// CacheNextBatch refills the cache with up to n levels (n capped at cache
// capacity), replacing whatever was cached before. Returns the number of
// levels actually cached (fewer than n at end of page).
func (d *Decoder) CacheNextBatch(n int) (int, error) {
	if n > len(d.cache) {
		n = len(d.cache)
	}
	d.cursor = 0

	if d.maxLevel == 0 {
		for i := 0; i < n; i++ {
			d.cache[i] = 0
		}
		d.cacheLen = n
		return n, nil
	}

	got := 0
	for got < n {
		var v uint64
		var ok bool
		var err error
		if d.bits != nil {
			v, ok = d.bits.GetValue(d.bitWidth)
		} else if v, ok, err = d.rle.Next(); err != nil {
			return got, err
		}
		if !ok {
			break
		}
		if int(v) > d.maxLevel {
			return got, errors.Wrapf(ErrLevelOutOfRange, "level %d > max %d", v, d.maxLevel)
		}
		d.cache[got] = byte(v)
		got++
	}
	d.cacheLen = got
	return got, nil
}

// HasNext reports whether GetNext would succeed without refilling.
func (d *Decoder) HasNext() bool { return d.cursor < d.cacheLen }

// GetNext returns the next cached level and advances the cursor.
func (d *Decoder) GetNext() (byte, bool) {
	if d.cursor >= d.cacheLen {
		return 0, false
	}
	v := d.cache[d.cursor]
	d.cursor++
	return v, true
}

// Peek returns the next cached level without advancing, or false if the
// cache is drained.
func (d *Decoder) Peek() (byte, bool) {
	if d.cursor >= d.cacheLen {
		return 0, false
	}
	return d.cache[d.cursor], true
}

// Skip advances the cursor by k cached entries (capped at what remains).
func (d *Decoder) Skip(k int) int {
	remaining := d.cacheLen - d.cursor
	if k > remaining {
		k = remaining
	}
	d.cursor += k
	return k
}

// CurrentIndex returns the cursor position within the current cache.
func (d *Decoder) CurrentIndex() int { return d.cursor }

// Size returns how many levels are currently cached.
func (d *Decoder) Size() int { return d.cacheLen }

// Remaining returns how many cached levels have not yet been consumed.
func (d *Decoder) Remaining() int { return d.cacheLen - d.cursor }

// MaxLevel returns the configured maximum level for this decoder.
func (d *Decoder) MaxLevel() int { return d.maxLevel }
