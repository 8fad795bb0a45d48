package scanner

import "github.com/janplus/Impala/internal/format"

// SplitRange is the byte range of the file one split owns.
type SplitRange struct {
	Start, End int64 // [Start, End)
}

// rowGroupMidpoint computes a row group's file-offset midpoint from its
// *first and last* column chunk offsets, not just one column — this
// matters when column chunks have been physically reordered within the
// file, which a single-column midpoint would get wrong.
func rowGroupMidpoint(rg format.RowGroup) int64 {
	if len(rg.Columns) == 0 {
		return rg.FileOffset
	}
	lastChunk := rg.Columns[len(rg.Columns)-1]
	first := columnChunkStart(rg.Columns[0])
	last := columnChunkStart(lastChunk)
	if lastChunk.MetaData != nil {
		last += lastChunk.MetaData.TotalCompressedSize
	}
	if last < first {
		first, last = last, first
	}
	return first + (last-first)/2
}

func columnChunkStart(cc format.ColumnChunk) int64 {
	if cc.MetaData == nil {
		return cc.FileOffset
	}
	if cc.MetaData.DictionaryPageOffset != nil {
		return *cc.MetaData.DictionaryPageOffset
	}
	return cc.MetaData.DataPageOffset
}

// OwnsRowGroup reports whether split owns rg: its midpoint falls within
// the split's half-open byte range, guaranteeing each row group is
// processed by exactly one split.
func (s SplitRange) OwnsRowGroup(rg format.RowGroup) bool {
	mid := rowGroupMidpoint(rg)
	return mid >= s.Start && mid < s.End
}
