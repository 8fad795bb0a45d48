// Package page implements a per-column-chunk cursor: a state machine that
// reads, validates, and decompresses a column chunk's dictionary and data
// pages in order.
package page

import (
	"bufio"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/thriftcompact"
	"github.com/janplus/Impala/internal/valdecode"
)

// State tracks a Cursor's progress through a column chunk: an optional
// dictionary page, then one or more data pages, then exhausted.
type State int

const (
	StateInitial State = iota
	StateReadingData
	StateExhausted
)

var (
	// ErrDictionaryOnBoolean reports a dictionary page on a BOOLEAN column,
	// which Parquet never encodes with a dictionary.
	ErrDictionaryOnBoolean = errors.New("page: dictionary page not permitted on BOOLEAN column")
	// ErrDuplicateDictionary reports a second dictionary page in one chunk.
	ErrDuplicateDictionary = errors.New("page: more than one dictionary page in column chunk")
	// ErrDictionaryAfterData reports a dictionary page arriving after a
	// data page has already been read.
	ErrDictionaryAfterData = errors.New("page: dictionary page follows a data page")
	// ErrBadEncoding reports a dictionary page whose encoding is neither
	// PLAIN nor PLAIN_DICTIONARY.
	ErrBadEncoding = errors.New("page: dictionary page encoding must be PLAIN or PLAIN_DICTIONARY")
	// ErrSizeMismatch reports a page whose decompressed size doesn't match
	// what its header declared.
	ErrSizeMismatch = errors.New("page: decompressed size does not match page header")
	// ErrCumulativeMismatch reports a column chunk that delivered fewer or
	// more values than its metadata declared.
	ErrCumulativeMismatch = errors.New("page: column delivered a different value count than declared")
)

// Cursor owns one column chunk's byte stream, decompressor, and dictionary
// decoder.
type Cursor struct {
	meta     *format.ColumnMetaData
	physType format.PhysicalType
	fixedLen int32
	createdBy string

	r                  *bufio.Reader
	maxPageHeaderBytes int

	state State
	dict  *valdecode.DictionaryDecoder

	curHeader        *format.PageHeader
	remainingInPage  int64
	cumulativeValues int64
}

// NewCursor constructs a Cursor over r, which must already be positioned at
// the first byte of this column chunk's first page (dictionary if present,
// else the first data page) — the caller is responsible for issuing the
// correct byte range for the chunk.
func NewCursor(r io.Reader, meta *format.ColumnMetaData, physType format.PhysicalType, fixedLen int32, createdBy string, maxPageHeaderBytes int) *Cursor {
	return &Cursor{
		meta:               meta,
		physType:           physType,
		fixedLen:           fixedLen,
		createdBy:          createdBy,
		r:                  bufio.NewReaderSize(r, 64*1024),
		maxPageHeaderBytes: maxPageHeaderBytes,
	}
}

// Dictionary returns the column's dictionary decoder, if one was read
// during Init. Returns nil for non-dictionary-encoded columns.
func (c *Cursor) Dictionary() *valdecode.DictionaryDecoder { return c.dict }

// CumulativeValuesRead returns how many values have been delivered from
// data pages so far.
func (c *Cursor) CumulativeValuesRead() int64 { return c.cumulativeValues }

// RemainingInPage returns how many values remain undelivered on the
// current data page.
func (c *Cursor) RemainingInPage() int64 { return c.remainingInPage }

// AtColumnEnd reports whether the cumulative value count matches the
// column chunk's declared count, the clean terminal state a column reaches
// once every data page has been consumed.
func (c *Cursor) AtColumnEnd() bool { return c.cumulativeValues >= c.meta.NumValues }

func (c *Cursor) readPageHeader() (*format.PageHeader, error) {
	st, _, err := thriftcompact.ReadStructFromPeekingReader(c.r, c.maxPageHeaderBytes)
	if err != nil {
		return nil, err
	}
	return format.DecodePageHeader(st)
}

// Init reads the dictionary page, if the column metadata says one is
// present, leaving the stream positioned at the first data page header.
// It is a no-op (and does not error) for columns without a dictionary page.
func (c *Cursor) Init() error {
	if c.meta.DictionaryPageOffset == nil {
		return nil
	}
	if c.physType == format.Boolean {
		return ErrDictionaryOnBoolean
	}

	header, err := c.readPageHeader()
	if err != nil {
		return errors.Wrap(err, "page: reading dictionary page header")
	}
	if header.Type != format.DictionaryPage {
		return errors.Wrap(ErrDictionaryAfterData, "expected dictionary page first")
	}

	compressed := make([]byte, header.CompressedPageSize)
	if _, err := io.ReadFull(c.r, compressed); err != nil {
		return errors.Wrap(err, "page: reading dictionary page body")
	}
	data, err := decompress(compressed, c.meta.Codec, int(header.UncompressedPageSize))
	if err != nil {
		return err
	}
	if len(data) != int(header.UncompressedPageSize) {
		return errors.Wrapf(ErrSizeMismatch, "dictionary page: got %d want %d", len(data), header.UncompressedPageSize)
	}

	dph := header.DictionaryPageHeader
	buggyWriter := format.KnownBuggyDictionaryHeaderWriter(c.createdBy)
	if dph == nil {
		if !buggyWriter {
			return errors.New("page: dictionary page header missing optional fields on an unrecognized writer")
		}
		// Known Impala 1.1 quirk: decode PLAIN entries until the
		// decompressed buffer is exhausted, since the entry count that
		// would normally come from the header is absent.
		dec, err := valdecode.NewDictionaryDecoderUnbounded(data, c.physType, c.fixedLen)
		if err != nil {
			return errors.Wrap(err, "page: decoding dictionary page under writer quirk tolerance")
		}
		c.dict = dec
		c.state = StateReadingData
		return nil
	}

	if dph.Encoding != format.EncodingPlain && dph.Encoding != format.EncodingPlainDictionary {
		return errors.Wrapf(ErrBadEncoding, "got encoding %d", dph.Encoding)
	}

	dec, err := valdecode.NewDictionaryDecoder(data, c.physType, c.fixedLen, int(dph.NumValues))
	if err != nil {
		return errors.Wrap(err, "page: decoding dictionary page")
	}
	c.dict = dec
	c.state = StateReadingData
	return nil
}

// ReadNextDataPage reads and decompresses the next data page, skipping
// over any unrecognized page types. It returns the page header and the
// full decompressed page payload (repetition-level bytes, then
// definition-level bytes, then the value stream, exactly as written).
//
// Returns io.EOF once the byte stream is exhausted cleanly.
func (c *Cursor) ReadNextDataPage() (*format.PageHeader, []byte, error) {
	if c.state == StateExhausted {
		return nil, nil, io.EOF
	}
	for {
		header, err := c.readPageHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.state = StateExhausted
				if c.cumulativeValues != c.meta.NumValues {
					return nil, nil, errors.Wrapf(ErrCumulativeMismatch, "read %d of %d declared values", c.cumulativeValues, c.meta.NumValues)
				}
				return nil, nil, io.EOF
			}
			return nil, nil, err
		}

		compressed := make([]byte, header.CompressedPageSize)
		if _, err := io.ReadFull(c.r, compressed); err != nil {
			return nil, nil, errors.Wrap(err, "page: reading data page body")
		}

		if header.Type == format.IndexPage || header.Type == format.DataPageV2 {
			// Unsupported/unused page types are skipped, not errors:
			// index pages are an optional acceleration structure and
			// DataPageV2 is not supported.
			continue
		}
		if header.Type == format.DictionaryPage {
			return nil, nil, errors.Wrap(ErrDuplicateDictionary, "second dictionary page in column chunk")
		}
		if header.Type != format.DataPage {
			continue
		}

		data, err := decompress(compressed, c.meta.Codec, int(header.UncompressedPageSize))
		if err != nil {
			return nil, nil, err
		}
		if len(data) != int(header.UncompressedPageSize) {
			return nil, nil, errors.Wrapf(ErrSizeMismatch, "data page: got %d want %d", len(data), header.UncompressedPageSize)
		}

		if header.DataPageHeader == nil {
			return nil, nil, errors.New("page: data page missing DataPageHeader")
		}

		c.curHeader = header
		c.remainingInPage = int64(header.DataPageHeader.NumValues)
		c.cumulativeValues += int64(header.DataPageHeader.NumValues)
		c.state = StateReadingData
		return header, data, nil
	}
}

// ConsumeFromPage records that n values were materialized (or skipped)
// from the current page, keeping the remaining-in-page count in sync with
// ScalarColumnReader's batched decode loop.
func (c *Cursor) ConsumeFromPage(n int64) {
	c.remainingInPage -= n
	if c.remainingInPage < 0 {
		c.remainingInPage = 0
	}
}
