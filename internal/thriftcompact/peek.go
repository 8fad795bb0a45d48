package thriftcompact

import (
	"bufio"
	"io"

	"github.com/cockroachdb/errors"
)

// ErrHeaderTooLarge is returned by ReadStructFromPeekingReader when a
// struct cannot be decoded within maxPeek bytes. Parquet page headers are
// Thrift-compact structs of unknown encoded length; this is how a
// configured max_page_header_bytes ceiling is enforced.
var ErrHeaderTooLarge = errors.New("thriftcompact: struct exceeds configured peek ceiling")

// ReadStructFromPeekingReader decodes one Thrift compact struct from the
// front of r without knowing its encoded length in advance. It peeks an
// initial window, tries to decode, and doubles the window on truncation
// until either decoding succeeds or maxPeek is exceeded. On success it
// discards exactly the bytes the struct consumed, leaving r positioned at
// the first byte after the struct.
//
// This mirrors the Parquet scanner's own page-header sizing trick: since
// Thrift compact structs don't carry a length prefix, the only way to know
// how many bytes a header occupied is to successfully parse it.
func ReadStructFromPeekingReader(r *bufio.Reader, maxPeek int) (*Struct, int, error) {
	if maxPeek <= 0 {
		maxPeek = 8 * 1024 * 1024
	}

	peekN := 256
	for {
		if peekN > maxPeek {
			peekN = maxPeek
		}

		b, err := r.Peek(peekN)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, err
		}
		if len(b) == 0 {
			return nil, 0, io.EOF
		}

		rd := NewReader(b)
		st, perr := rd.ReadStruct()
		if perr == nil {
			consumed := rd.Pos()
			if consumed <= 0 {
				return nil, 0, errors.New("thriftcompact: struct consumed 0 bytes")
			}
			if _, derr := r.Discard(consumed); derr != nil {
				return nil, 0, derr
			}
			return st, consumed, nil
		}

		if errors.Is(perr, ErrTruncated) {
			if peekN >= maxPeek {
				return nil, 0, errors.Wrapf(ErrHeaderTooLarge, "after peeking %d bytes", peekN)
			}
			peekN *= 2
			continue
		}
		return nil, 0, perr
	}
}
