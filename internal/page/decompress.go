package page

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"

	"github.com/janplus/Impala/internal/format"
)

// ErrUnsupportedCodec reports a compression codec id this reader doesn't
// know how to decode.
var ErrUnsupportedCodec = errors.New("page: unsupported compression codec")

// decompress inflates compressed using codec into a buffer of exactly
// uncompressedSize bytes, via github.com/klauspost/compress for Snappy and
// Gzip.
func decompress(compressed []byte, codec format.CompressionCodec, uncompressedSize int) ([]byte, error) {
	switch codec {
	case format.Uncompressed:
		return compressed, nil
	case format.Snappy:
		out, err := snappy.Decode(make([]byte, 0, uncompressedSize), compressed)
		if err != nil {
			return nil, errors.Wrap(err, "page: snappy decompression failed")
		}
		return out, nil
	case format.Gzip:
		zr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, errors.Wrap(err, "page: gzip header invalid")
		}
		defer zr.Close()
		out := make([]byte, uncompressedSize)
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, errors.Wrap(err, "page: gzip decompression failed")
		}
		return out, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedCodec, "codec id %d", codec)
	}
}
