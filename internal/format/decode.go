package format

import (
	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/thriftcompact"
)

func i32Field(st *thriftcompact.Struct, id int16) (int32, bool) {
	f := st.Get(id)
	if f == nil {
		return 0, false
	}
	return f.Value.I32, true
}

func i64Field(st *thriftcompact.Struct, id int16) (int64, bool) {
	f := st.Get(id)
	if f == nil {
		return 0, false
	}
	return f.Value.I64, true
}

func stringField(st *thriftcompact.Struct, id int16) (string, bool) {
	f := st.Get(id)
	if f == nil || f.Value.Binary == nil {
		return "", false
	}
	return string(f.Value.Binary), true
}

func boolField(st *thriftcompact.Struct, id int16) (bool, bool) {
	f := st.Get(id)
	if f == nil {
		return false, false
	}
	return f.Value.Bool, true
}

func structField(st *thriftcompact.Struct, id int16) (*thriftcompact.Struct, bool) {
	f := st.Get(id)
	if f == nil || f.Value.Struct == nil {
		return nil, false
	}
	return f.Value.Struct, true
}

func listField(st *thriftcompact.Struct, id int16) ([]thriftcompact.Value, bool) {
	f := st.Get(id)
	if f == nil {
		return nil, false
	}
	return f.Value.List, true
}

// DecodeFileMetaData decodes the root FileMetaData struct (footer field 2
// of the enclosing TFileMetaData Thrift message — Parquet writes it as a
// bare struct, not wrapped in a message envelope).
func DecodeFileMetaData(st *thriftcompact.Struct) (*FileMetaData, error) {
	meta := &FileMetaData{}
	if v, ok := i32Field(st, 1); ok {
		meta.Version = v
	}
	if elems, ok := listField(st, 2); ok {
		for _, e := range elems {
			if e.Struct == nil {
				continue
			}
			se, err := decodeSchemaElement(e.Struct)
			if err != nil {
				return nil, err
			}
			meta.Schema = append(meta.Schema, se)
		}
	}
	if v, ok := i64Field(st, 3); ok {
		meta.NumRows = v
	}
	if elems, ok := listField(st, 4); ok {
		for _, e := range elems {
			if e.Struct == nil {
				continue
			}
			rg, err := decodeRowGroup(e.Struct)
			if err != nil {
				return nil, err
			}
			meta.RowGroups = append(meta.RowGroups, rg)
		}
	}
	if v, ok := stringField(st, 6); ok {
		meta.CreatedBy = &v
	}
	return meta, nil
}

func decodeSchemaElement(st *thriftcompact.Struct) (SchemaElement, error) {
	var out SchemaElement
	if v, ok := i32Field(st, 1); ok {
		out.Type = PhysicalType(v)
		out.HasType = true
	}
	if v, ok := i32Field(st, 2); ok {
		out.TypeLength = &v
	}
	if v, ok := i32Field(st, 3); ok {
		rt := FieldRepetitionType(v)
		out.RepetitionType = &rt
	}
	if v, ok := stringField(st, 4); ok {
		out.Name = v
	}
	if v, ok := i32Field(st, 5); ok {
		out.NumChildren = &v
	}
	if v, ok := i32Field(st, 6); ok {
		ct := ConvertedType(v)
		out.ConvertedType = &ct
	}
	if v, ok := i32Field(st, 7); ok {
		out.Scale = &v
	}
	if v, ok := i32Field(st, 8); ok {
		out.Precision = &v
	}
	if v, ok := i32Field(st, 9); ok {
		out.FieldID = &v
	}
	return out, nil
}

func decodeRowGroup(st *thriftcompact.Struct) (RowGroup, error) {
	var out RowGroup
	if elems, ok := listField(st, 1); ok {
		for _, e := range elems {
			if e.Struct == nil {
				continue
			}
			cc, err := decodeColumnChunk(e.Struct)
			if err != nil {
				return RowGroup{}, err
			}
			out.Columns = append(out.Columns, cc)
		}
	}
	if v, ok := i64Field(st, 2); ok {
		out.TotalByteSize = v
	}
	if v, ok := i64Field(st, 3); ok {
		out.NumRows = v
	}
	if v, ok := i64Field(st, 5); ok {
		out.FileOffset = v
	}
	if v, ok := i64Field(st, 6); ok {
		out.TotalCompressedSize = v
	}
	if v, ok := i32Field(st, 7); ok {
		out.Ordinal = v
	}
	return out, nil
}

func decodeColumnChunk(st *thriftcompact.Struct) (ColumnChunk, error) {
	var out ColumnChunk
	if v, ok := stringField(st, 1); ok && v != "" {
		out.FilePath = []string{v}
	}
	if v, ok := i64Field(st, 2); ok {
		out.FileOffset = v
	}
	if sst, ok := structField(st, 3); ok {
		md, err := decodeColumnMetaData(sst)
		if err != nil {
			return ColumnChunk{}, err
		}
		out.MetaData = md
	}
	if v, ok := i64Field(st, 4); ok {
		out.OffsetIndexOffset = &v
	}
	if v, ok := i32Field(st, 5); ok {
		out.OffsetIndexLength = &v
	}
	if v, ok := i64Field(st, 6); ok {
		out.ColumnIndexOffset = &v
	}
	if v, ok := i32Field(st, 7); ok {
		out.ColumnIndexLength = &v
	}
	return out, nil
}

func decodeColumnMetaData(st *thriftcompact.Struct) (*ColumnMetaData, error) {
	out := &ColumnMetaData{}
	if v, ok := i32Field(st, 1); ok {
		out.Type = PhysicalType(v)
	}
	if elems, ok := listField(st, 2); ok {
		for _, e := range elems {
			out.Encodings = append(out.Encodings, Encoding(e.I32))
		}
	}
	if elems, ok := listField(st, 3); ok {
		for _, e := range elems {
			out.PathInSchema = append(out.PathInSchema, string(e.Binary))
		}
	}
	if v, ok := i32Field(st, 4); ok {
		out.Codec = CompressionCodec(v)
	}
	if v, ok := i64Field(st, 5); ok {
		out.NumValues = v
	}
	if v, ok := i64Field(st, 6); ok {
		out.TotalUncompressedSize = v
	}
	if v, ok := i64Field(st, 7); ok {
		out.TotalCompressedSize = v
	}
	if elems, ok := listField(st, 8); ok {
		for _, e := range elems {
			if e.Struct == nil {
				continue
			}
			out.KeyValueMeta = append(out.KeyValueMeta, decodeKeyValue(e.Struct))
		}
	}
	if v, ok := i64Field(st, 9); ok {
		out.DataPageOffset = v
	}
	if v, ok := i64Field(st, 10); ok {
		out.IndexPageOffset = &v
	}
	if v, ok := i64Field(st, 11); ok {
		out.DictionaryPageOffset = &v
	}
	if sst, ok := structField(st, 12); ok {
		s := decodeStatistics(sst)
		out.Statistics = &s
	}
	if elems, ok := listField(st, 13); ok {
		for _, e := range elems {
			if e.Struct == nil {
				continue
			}
			out.EncodingStats = append(out.EncodingStats, decodePageEncodingStats(e.Struct))
		}
	}
	if v, ok := i64Field(st, 14); ok {
		out.BloomFilterOffset = &v
	}
	if v, ok := i32Field(st, 15); ok {
		out.BloomFilterLength = &v
	}
	if sst, ok := structField(st, 16); ok {
		ss := decodeSizeStatistics(sst)
		out.SizeStatistics = &ss
	}
	return out, nil
}

func decodeKeyValue(st *thriftcompact.Struct) KeyValue {
	var out KeyValue
	if v, ok := stringField(st, 1); ok {
		out.Key = v
	}
	if v, ok := stringField(st, 2); ok {
		out.Value = &v
	}
	return out
}

func decodeStatistics(st *thriftcompact.Struct) Statistics {
	var out Statistics
	if f := st.Get(1); f != nil {
		out.Max = f.Value.Binary
	}
	if f := st.Get(2); f != nil {
		out.Min = f.Value.Binary
	}
	if v, ok := i64Field(st, 3); ok {
		out.NullCount = &v
	}
	if v, ok := i64Field(st, 4); ok {
		out.DistinctCount = &v
	}
	if f := st.Get(5); f != nil {
		out.MaxValue = f.Value.Binary
	}
	if f := st.Get(6); f != nil {
		out.MinValue = f.Value.Binary
	}
	return out
}

func decodePageEncodingStats(st *thriftcompact.Struct) PageEncodingStats {
	var out PageEncodingStats
	if v, ok := i32Field(st, 1); ok {
		out.PageType = PageType(v)
	}
	if v, ok := i32Field(st, 2); ok {
		out.Encoding = Encoding(v)
	}
	if v, ok := i32Field(st, 3); ok {
		out.Count = v
	}
	return out
}

func decodeSizeStatistics(st *thriftcompact.Struct) SizeStatistics {
	var out SizeStatistics
	if v, ok := i64Field(st, 1); ok {
		out.UnencodedByteArrayDataBytes = v
	}
	if elems, ok := listField(st, 2); ok {
		for _, e := range elems {
			out.RepetitionLevelHistogram = append(out.RepetitionLevelHistogram, e.I64)
		}
	}
	if elems, ok := listField(st, 3); ok {
		for _, e := range elems {
			out.DefinitionLevelHistogram = append(out.DefinitionLevelHistogram, e.I64)
		}
	}
	return out
}

// DecodePageHeader decodes a PageHeader struct, including its nested
// DataPageHeader (field 5) or DictionaryPageHeader (field 7) — only V1
// page headers are supported (no DataPageHeaderV2).
func DecodePageHeader(st *thriftcompact.Struct) (*PageHeader, error) {
	out := &PageHeader{}
	v, ok := i32Field(st, 1)
	if !ok {
		return nil, errors.New("format: page header missing type field")
	}
	out.Type = PageType(v)
	if v, ok := i32Field(st, 2); ok {
		out.UncompressedPageSize = v
	}
	if v, ok := i32Field(st, 3); ok {
		out.CompressedPageSize = v
	}
	if sst, ok := structField(st, 5); ok {
		dph := &DataPageHeader{}
		if v, ok := i32Field(sst, 1); ok {
			dph.NumValues = v
		}
		if v, ok := i32Field(sst, 2); ok {
			dph.Encoding = Encoding(v)
		}
		if v, ok := i32Field(sst, 3); ok {
			dph.DefinitionLevelEncoding = Encoding(v)
		}
		if v, ok := i32Field(sst, 4); ok {
			dph.RepetitionLevelEncoding = Encoding(v)
		}
		if statSt, ok := structField(sst, 5); ok {
			s := decodeStatistics(statSt)
			dph.Statistics = &s
		}
		out.DataPageHeader = dph
	}
	if sst, ok := structField(st, 7); ok {
		dict := &DictionaryPageHeader{}
		if v, ok := i32Field(sst, 1); ok {
			dict.NumValues = v
		}
		if v, ok := i32Field(sst, 2); ok {
			dict.Encoding = Encoding(v)
		}
		if v, ok := boolField(sst, 3); ok {
			dict.IsSorted = v
		}
		out.DictionaryPageHeader = dict
	}
	return out, nil
}
