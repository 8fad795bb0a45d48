// Package format holds the subset of the Parquet Thrift schema this reader
// understands, decoded from internal/thriftcompact structs rather than from
// a generated Thrift binding. Field numbering follows parquet.thrift.
package format

// PhysicalType is parquet.thrift's Type enum.
type PhysicalType int32

const (
	Boolean           PhysicalType = 0
	Int32             PhysicalType = 1
	Int64             PhysicalType = 2
	Int96             PhysicalType = 3
	Float             PhysicalType = 4
	Double            PhysicalType = 5
	ByteArray         PhysicalType = 6
	FixedLenByteArray PhysicalType = 7
)

// ConvertedType is parquet.thrift's ConvertedType enum (the subset this
// reader acts on).
type ConvertedType int32

const (
	ConvertedUTF8      ConvertedType = 0
	ConvertedDecimal   ConvertedType = 5
	ConvertedDate      ConvertedType = 6
	ConvertedTimeMillis ConvertedType = 7
	ConvertedTimestampMillis ConvertedType = 9
	ConvertedInterval  ConvertedType = 21
)

// Encoding is parquet.thrift's Encoding enum; only PLAIN, PLAIN_DICTIONARY,
// RLE, RLE_DICTIONARY, and BIT_PACKED are meaningful to the decoder, the
// rest are recognized so an unsupported-encoding error can name them.
type Encoding int32

const (
	EncodingPlain             Encoding = 0
	EncodingPlainDictionary   Encoding = 2
	EncodingRLE               Encoding = 3
	EncodingBitPacked         Encoding = 4
	EncodingDeltaBinaryPacked Encoding = 5
	EncodingRLEDictionary     Encoding = 8
)

// CompressionCodec is parquet.thrift's CompressionCodec enum.
type CompressionCodec int32

const (
	Uncompressed CompressionCodec = 0
	Snappy       CompressionCodec = 1
	Gzip         CompressionCodec = 2
)

// FieldRepetitionType is parquet.thrift's FieldRepetitionType enum.
type FieldRepetitionType int32

const (
	Required FieldRepetitionType = 0
	Optional FieldRepetitionType = 1
	Repeated FieldRepetitionType = 2
)

// PageType is parquet.thrift's PageType enum.
type PageType int32

const (
	DataPage       PageType = 0
	IndexPage      PageType = 1
	DictionaryPage PageType = 2
	DataPageV2     PageType = 3
)

type SchemaElement struct {
	Type           PhysicalType
	HasType        bool
	TypeLength     *int32
	RepetitionType *FieldRepetitionType
	Name           string
	NumChildren    *int32
	ConvertedType  *ConvertedType
	Scale          *int32
	Precision      *int32
	FieldID        *int32
}

type KeyValue struct {
	Key   string
	Value *string
}

type SortingColumn struct {
	ColumnIdx  int32
	Descending bool
	NullsFirst bool
}

type Statistics struct {
	Max           []byte
	Min           []byte
	NullCount     *int64
	DistinctCount *int64
	MaxValue      []byte
	MinValue      []byte
}

type PageEncodingStats struct {
	PageType PageType
	Encoding Encoding
	Count    int32
}

type SizeStatistics struct {
	UnencodedByteArrayDataBytes int64
	RepetitionLevelHistogram    []int64
	DefinitionLevelHistogram    []int64
}

type ColumnMetaData struct {
	Type                  PhysicalType
	Encodings             []Encoding
	PathInSchema          []string
	Codec                 CompressionCodec
	NumValues             int64
	TotalUncompressedSize int64
	TotalCompressedSize   int64
	KeyValueMeta          []KeyValue
	DataPageOffset        int64
	IndexPageOffset       *int64
	DictionaryPageOffset  *int64
	Statistics            *Statistics
	EncodingStats         []PageEncodingStats
	BloomFilterOffset     *int64
	BloomFilterLength     *int32
	SizeStatistics        *SizeStatistics
}

type ColumnChunk struct {
	FilePath          []string
	FileOffset        int64
	MetaData          *ColumnMetaData
	OffsetIndexOffset *int64
	OffsetIndexLength *int32
	ColumnIndexOffset *int64
	ColumnIndexLength *int32
}

type RowGroup struct {
	Columns             []ColumnChunk
	TotalByteSize       int64
	NumRows             int64
	SortingColumns      []SortingColumn
	FileOffset          int64
	TotalCompressedSize int64
	Ordinal             int32
}

type FileMetaData struct {
	Version   int32
	Schema    []SchemaElement
	NumRows   int64
	RowGroups []RowGroup
	CreatedBy *string
}

type DataPageHeader struct {
	NumValues               int32
	Encoding                Encoding
	DefinitionLevelEncoding Encoding
	RepetitionLevelEncoding Encoding
	Statistics              *Statistics
}

type DictionaryPageHeader struct {
	NumValues int32
	Encoding  Encoding
	IsSorted  bool
}

type PageHeader struct {
	Type                 PageType
	UncompressedPageSize int32
	CompressedPageSize   int32
	DataPageHeader       *DataPageHeader
	DictionaryPageHeader *DictionaryPageHeader
}
