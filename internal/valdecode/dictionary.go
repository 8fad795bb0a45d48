package valdecode

import (
	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/format"
)

// ErrDictionaryIndexOutOfRange reports a decoded dictionary index with no
// corresponding entry.
var ErrDictionaryIndexOutOfRange = errors.New("valdecode: dictionary index out of range")

// DictionaryDecoder is a random-access decoder from dictionary index to
// typed value. It is built once per column chunk from the (already
// decompressed) dictionary page's PLAIN-encoded bytes: for fixed-size
// physical types this makes every Get O(1) by construction; for ByteArray
// it is still O(1) after the one-time decode, since every entry's bytes
// are sliced out during construction rather than re-scanned per Get.
type DictionaryDecoder struct {
	values []Value
}

// NewDictionaryDecoder decodes count PLAIN-encoded entries from data.
func NewDictionaryDecoder(data []byte, physType format.PhysicalType, fixedLen int32, count int) (*DictionaryDecoder, error) {
	dec := NewPlainDecoder(data, physType, fixedLen)
	values := make([]Value, count)
	n, err := dec.DecodeBatch(values, count)
	if err != nil {
		return nil, errors.Wrap(err, "valdecode: decoding dictionary page")
	}
	if n != count {
		return nil, errors.Newf("valdecode: dictionary page declared %d entries, decoded %d", count, n)
	}
	return &DictionaryDecoder{values: values}, nil
}

// Get returns the value at index, or ErrDictionaryIndexOutOfRange.
func (d *DictionaryDecoder) Get(index int) (Value, error) {
	if index < 0 || index >= len(d.values) {
		return Value{}, errors.Wrapf(ErrDictionaryIndexOutOfRange, "index %d of %d entries", index, len(d.values))
	}
	return d.values[index], nil
}

// Count returns the number of dictionary entries.
func (d *DictionaryDecoder) Count() int { return len(d.values) }

// NewDictionaryDecoderUnbounded decodes PLAIN-encoded entries until data is
// exhausted, for the writer-quirk case where a known-buggy writer omitted
// the dictionary page header's num_values field and the entry count must
// be inferred from the decompressed byte length instead of trusted
// metadata.
func NewDictionaryDecoderUnbounded(data []byte, physType format.PhysicalType, fixedLen int32) (*DictionaryDecoder, error) {
	dec := NewPlainDecoder(data, physType, fixedLen)
	var values []Value
	for dec.Remaining() > 0 {
		v, err := dec.DecodeOne()
		if err != nil {
			return nil, errors.Wrap(err, "valdecode: decoding dictionary page under writer quirk tolerance")
		}
		values = append(values, v)
	}
	return &DictionaryDecoder{values: values}, nil
}
