package column

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/levels"
	"github.com/janplus/Impala/internal/page"
	"github.com/janplus/Impala/internal/rle"
	"github.com/janplus/Impala/internal/schema"
	"github.com/janplus/Impala/internal/valdecode"
)

// ErrParseSticky wraps a value-decode or page-read failure latched as the
// scanner's sticky per-scanner parse status: once set, the column refuses
// to produce further values and every caller sees the same error.
var ErrParseSticky = errors.New("column: sticky parse error")

// ScalarColumnReader produces typed values for one physical leaf column. It
// integrates a page.Cursor, two levels.Decoder instances (definition and
// repetition), and whichever value decoder the current page's encoding
// selects.
type ScalarColumnReader struct {
	node      *schema.Node
	cursor    *page.Cursor
	defDec    *levels.Decoder
	repDec    *levels.Decoder
	batchSize int

	// SlotIndex is where this reader writes its own decoded value or null
	// indicator in each output Row.
	SlotIndex int

	// PosSlotIndex, when >= 0, is the output slot this reader's rep-level
	// transitions drive an ARRAY_POS synthetic position field into.
	PosSlotIndex    int
	posCurrentValue int64

	// value conversions
	charLen          int32 // > 0 enables CHAR(n) pad/truncate
	convertLegacyUTC bool  // enables INT96 UTC->local conversion
	localZone        *time.Location

	curPageData      []byte
	pageEncoding     format.Encoding
	plainDecoder     *valdecode.PlainDecoder
	boolReader       *rle.BitReader
	dictIndexDecoder *rle.Decoder

	atRowGroupEnd bool
	parseErr      error
}

// ScalarOption configures a ScalarColumnReader at construction.
type ScalarOption func(*ScalarColumnReader)

// WithCharLen enables CHAR(n) pad/truncate conversion on decoded values.
func WithCharLen(n int32) ScalarOption {
	return func(s *ScalarColumnReader) { s.charLen = n }
}

// WithLegacyUTCConversion enables INT96 UTC->local conversion, gated by the
// caller (RowGroupScanner) on format.IsLegacyHiveWriter and the column
// being physically INT96.
func WithLegacyUTCConversion(loc *time.Location) ScalarOption {
	return func(s *ScalarColumnReader) { s.convertLegacyUTC = true; s.localZone = loc }
}

// NewScalarColumnReader constructs a reader for node, bound to cursor,
// writing to slotIndex in every output Row. batchSize is the engine batch
// size used to size level caches.
func NewScalarColumnReader(node *schema.Node, cursor *page.Cursor, batchSize int, slotIndex int, opts ...ScalarOption) *ScalarColumnReader {
	s := &ScalarColumnReader{
		node:         node,
		cursor:       cursor,
		defDec:       levels.New(batchSize),
		repDec:       levels.New(batchSize),
		batchSize:    batchSize,
		SlotIndex:    slotIndex,
		PosSlotIndex: -1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ScalarColumnReader) MaxDefLevel() int   { return s.node.MaxDefLevel }
func (s *ScalarColumnReader) MaxRepLevel() int   { return s.node.MaxRepLevel }
func (s *ScalarColumnReader) RowGroupAtEnd() bool { return s.atRowGroupEnd }
func (s *ScalarColumnReader) ParseError() error  { return s.parseErr }
func (s *ScalarColumnReader) ValuesRead() int64  { return s.cursor.CumulativeValuesRead() }

func (s *ScalarColumnReader) fixedLen() int32 {
	if s.node.Element.TypeLength != nil {
		return *s.node.Element.TypeLength
	}
	return 0
}

// fillPageIfNeeded ensures a non-empty current data page is available,
// fetching the next one (and initializing its level decoders and value
// decoder) if the current page is exhausted. Returns false (no error) once
// the row group is at end.
func (s *ScalarColumnReader) fillPageIfNeeded() (bool, error) {
	if s.atRowGroupEnd {
		return false, nil
	}
	if s.cursor.RemainingInPage() > 0 {
		return true, nil
	}

	header, data, err := s.cursor.ReadNextDataPage()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.atRowGroupEnd = true
			return false, nil
		}
		s.parseErr = err
		return false, err
	}

	dph := header.DataPageHeader
	rest := data
	if s.node.MaxRepLevel > 0 {
		consumed, err := s.repDec.Init(dph.RepetitionLevelEncoding, s.node.MaxRepLevel, int(dph.NumValues), rest)
		if err != nil {
			s.parseErr = err
			return false, err
		}
		rest = rest[consumed:]
	}
	if s.node.MaxDefLevel > 0 {
		consumed, err := s.defDec.Init(dph.DefinitionLevelEncoding, s.node.MaxDefLevel, int(dph.NumValues), rest)
		if err != nil {
			s.parseErr = err
			return false, err
		}
		rest = rest[consumed:]
	}

	s.pageEncoding = dph.Encoding
	s.curPageData = rest
	switch dph.Encoding {
	case format.EncodingPlain:
		if s.node.Element.Type == format.Boolean {
			// PLAIN-encoded BOOLEAN is a 1-bit-per-value bit-packed run, not
			// a PlainDecoder-shaped stream.
			s.boolReader = rle.NewBitReader(rest)
			s.plainDecoder = nil
		} else {
			s.plainDecoder = valdecode.NewPlainDecoder(rest, s.node.Element.Type, s.fixedLen())
			s.boolReader = nil
		}
		s.dictIndexDecoder = nil
	case format.EncodingPlainDictionary, format.EncodingRLEDictionary:
		if s.cursor.Dictionary() == nil {
			err := errors.New("column: dictionary-encoded page with no dictionary page in chunk")
			s.parseErr = err
			return false, err
		}
		if len(rest) < 1 {
			err := errors.New("column: dictionary-encoded page missing bit-width prefix byte")
			s.parseErr = err
			return false, err
		}
		bitWidth := uint(rest[0])
		s.dictIndexDecoder = rle.NewDecoder(rest[1:], bitWidth)
		s.plainDecoder = nil
	default:
		err := errors.Newf("column: unsupported data page encoding %d", dph.Encoding)
		s.parseErr = err
		return false, err
	}
	return true, nil
}

func (s *ScalarColumnReader) decodeOneValue() (valdecode.Value, error) {
	if s.dictIndexDecoder != nil {
		idx, ok, err := s.dictIndexDecoder.Next()
		if err != nil {
			return valdecode.Value{}, err
		}
		if !ok {
			return valdecode.Value{}, errors.New("column: dictionary index stream exhausted before level cache")
		}
		return s.cursor.Dictionary().Get(int(idx))
	}
	if s.boolReader != nil {
		v, ok := s.boolReader.GetValue(1)
		if !ok {
			return valdecode.Value{}, errors.New("column: boolean bit stream exhausted before level cache")
		}
		return valdecode.Value{Type: format.Boolean, Bool: v != 0}, nil
	}
	return s.plainDecoder.DecodeOne()
}

func (s *ScalarColumnReader) convert(v valdecode.Value) valdecode.Value {
	if s.charLen > 0 && v.Bytes != nil {
		v.Bytes = valdecode.PadOrTruncateChar(v.Bytes, int(s.charLen))
	}
	if s.convertLegacyUTC && v.Type == format.Int96 {
		v.Time = valdecode.ConvertLegacyUTCToLocal(valdecode.DecodeInt96Timestamp(v.Int96), s.localZone)
		v.HasTime = true
	}
	return v
}

// cacheBatch refills the def (and, if nested, rep) level caches, sized to
// the lesser of the engine batch size, the page's remaining values, and
// the caller's remaining request.
func (s *ScalarColumnReader) cacheBatch(want int) (int, error) {
	remainInPage := int(s.cursor.RemainingInPage())
	n := s.batchSize
	if n > remainInPage {
		n = remainInPage
	}
	if n > want {
		n = want
	}
	if n <= 0 {
		return 0, nil
	}
	if s.node.MaxRepLevel > 0 {
		if _, err := s.repDec.CacheNextBatch(n); err != nil {
			return 0, err
		}
	}
	got, err := s.defDec.CacheNextBatch(n)
	if err != nil {
		return 0, err
	}
	return got, nil
}

// ReadValueBatch materializes up to max tuples into rows[:n], for a column
// living inside a collection: both definition and repetition levels
// advance.
func (s *ScalarColumnReader) ReadValueBatch(max int, rows []Row) (int, error) {
	produced := 0
	for produced < max {
		ok, err := s.fillPageIfNeeded()
		if err != nil {
			return produced, err
		}
		if !ok {
			break
		}
		cached, err := s.cacheBatch(max - produced)
		if err != nil {
			s.parseErr = err
			return produced, err
		}
		if cached == 0 {
			break
		}
		consumed := 0
		for consumed < cached && produced < max {
			def, _ := s.defDec.GetNext()
			var rep byte
			if s.node.MaxRepLevel > 0 {
				rep, _ = s.repDec.GetNext()
			}
			consumed++

			if int(def) < s.node.IRA {
				// Containing repeated field absent/empty: no tuple, but
				// the level is still consumed.
				continue
			}

			row := rows[produced]
			if s.PosSlotIndex >= 0 {
				if int(rep) <= s.node.MaxRepLevel-1 {
					s.posCurrentValue = 0
				}
				row[s.PosSlotIndex] = Slot{Position: s.posCurrentValue}
				s.posCurrentValue++
			}

			if int(def) >= s.node.MaxDefLevel {
				v, err := s.decodeOneValue()
				if err != nil {
					s.parseErr = errors.Wrap(ErrParseSticky, err.Error())
					return produced, s.parseErr
				}
				row[s.SlotIndex] = Slot{Value: s.convert(v)}
			} else {
				row[s.SlotIndex] = Slot{Null: true}
			}
			produced++
		}
		s.cursor.ConsumeFromPage(int64(consumed))
	}
	return produced, s.parseErr
}

// ReadNonRepeatedValueBatch materializes up to max tuples for a top-level
// (non-collection) column: only the definition level advances, repetition
// is assumed 0 throughout.
func (s *ScalarColumnReader) ReadNonRepeatedValueBatch(max int, rows []Row) (int, error) {
	produced := 0
	for produced < max {
		ok, err := s.fillPageIfNeeded()
		if err != nil {
			return produced, err
		}
		if !ok {
			break
		}
		cached, err := s.cacheBatch(max - produced)
		if err != nil {
			s.parseErr = err
			return produced, err
		}
		if cached == 0 {
			break
		}
		consumed := 0
		for consumed < cached && produced < max {
			def, _ := s.defDec.GetNext()
			consumed++

			row := rows[produced]
			if int(def) >= s.node.MaxDefLevel {
				v, err := s.decodeOneValue()
				if err != nil {
					s.parseErr = errors.Wrap(ErrParseSticky, err.Error())
					return produced, s.parseErr
				}
				row[s.SlotIndex] = Slot{Value: s.convert(v)}
			} else {
				row[s.SlotIndex] = Slot{Null: true}
			}
			produced++
		}
		s.cursor.ConsumeFromPage(int64(consumed))
	}
	return produced, s.parseErr
}

// ensureCache guarantees at least one level pair is cached and available
// via Peek, fetching a new page and/or refilling the cache as needed.
// Returns false (no error) once the row group is at end.
func (s *ScalarColumnReader) ensureCache() (bool, error) {
	if s.defDec.HasNext() {
		return true, nil
	}
	got, err := s.fillPageIfNeeded()
	if err != nil {
		return false, err
	}
	if !got {
		return false, nil
	}
	if _, err := s.cacheBatch(s.batchSize); err != nil {
		s.parseErr = err
		return false, err
	}
	return s.defDec.HasNext(), nil
}

// PeekLevels and ConsumeOne together let a CollectionColumnReader drive
// this reader one (def, rep) pair at a time — one-level lookahead is
// required to detect a collection boundary before deciding whether to keep
// pulling items into the current array.
func (s *ScalarColumnReader) PeekLevels() (def, rep byte, ok bool, err error) {
	has, err := s.ensureCache()
	if err != nil || !has {
		return 0, 0, false, err
	}
	def, _ = s.defDec.Peek()
	if s.node.MaxRepLevel > 0 {
		rep, _ = s.repDec.Peek()
	}
	return def, rep, true, nil
}

// ConsumeOne consumes exactly the level pair PeekLevels most recently
// reported and materializes it into dst, mirroring the per-level body of
// ReadValueBatch's hot loop but one value at a time — this path is not
// batch-cached at value granularity, which is an acceptable cost since
// nested-collection assembly is not the primary flat-scan hot path.
func (s *ScalarColumnReader) ConsumeOne(dst *Slot) (produced bool, err error) {
	has, err := s.ensureCache()
	if err != nil {
		return false, err
	}
	if !has {
		return false, errors.New("column: ConsumeOne called with no available level")
	}
	def, _ := s.defDec.GetNext()
	if s.node.MaxRepLevel > 0 {
		_, _ = s.repDec.GetNext()
	}
	s.cursor.ConsumeFromPage(1)

	if int(def) < s.node.IRA {
		return false, nil
	}
	if int(def) >= s.node.MaxDefLevel {
		v, err := s.decodeOneValue()
		if err != nil {
			s.parseErr = errors.Wrap(ErrParseSticky, err.Error())
			return false, s.parseErr
		}
		*dst = Slot{Value: s.convert(v)}
	} else {
		*dst = Slot{Null: true}
	}
	return true, nil
}
