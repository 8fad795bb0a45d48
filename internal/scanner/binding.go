package scanner

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/assemble"
	"github.com/janplus/Impala/internal/column"
	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/page"
	"github.com/janplus/Impala/internal/schema"
)

// maxDictHeaderPad is the tail padding tolerated on a column chunk's
// computed byte range for writer versions carrying the known
// dictionary-header size bug.
const maxDictHeaderPad = 100

// ColumnRequest is one query-projection column: either an ordinary value
// path bound to SlotIndex, or a path ending in an ARRAY_POS marker which
// instead binds to whichever scalar reader already owns the sibling item
// column.
type ColumnRequest struct {
	Path      []schema.Step
	SlotIndex int
}

// ErrMissingPosTarget reports that an ARRAY_POS request has no
// already-projected sibling item column to bind its position slot onto.
var ErrMissingPosTarget = errors.New("scanner: ARRAY_POS request has no projected item column to bind to")

// columnByteRange computes [start, end) for a column chunk: the dictionary
// page offset if present (validated to precede the data page offset), else
// the data page offset, through total_compressed_size bytes, with a small
// tail padding tolerance for writers carrying the known dictionary-header
// size bug.
func columnByteRange(meta *format.ColumnMetaData, createdBy string, fileSize int64) (start, length int64, err error) {
	start = meta.DataPageOffset
	if meta.DictionaryPageOffset != nil {
		start = *meta.DictionaryPageOffset
		if start > meta.DataPageOffset {
			return 0, 0, errors.New("scanner: dictionary page offset follows data page offset")
		}
	}
	length = meta.TotalCompressedSize
	if length <= 0 {
		return 0, 0, errors.New("scanner: non-positive column chunk length")
	}
	if format.KnownBuggyDictionaryHeaderWriter(createdBy) {
		length += maxDictHeaderPad
	}
	if start < 0 || start+length > fileSize {
		// Clamp rather than error: the padding tolerance above is a ceiling,
		// not a guarantee the bytes exist, and a short read below the tail
		// of the file is still a valid, fully-decodable column chunk.
		length = fileSize - start
	}
	return start, length, nil
}

func (s *RowGroupScanner) makeCursor(ctx context.Context, node *schema.Node, rg format.RowGroup) (*page.Cursor, error) {
	cc := rg.Columns[node.ColIdx]
	if cc.MetaData == nil {
		return nil, errors.Newf("scanner: column chunk %d missing metadata", node.ColIdx)
	}
	createdBy := ""
	if s.meta.CreatedBy != nil {
		createdBy = *s.meta.CreatedBy
	}
	start, length, err := columnByteRange(cc.MetaData, createdBy, s.fileSize)
	if err != nil {
		return nil, errors.Wrapf(err, "scanner: column %q", node.Element.Name)
	}
	rng := s.mgr.AllocateRange(s.path, start, length, "")
	buf, err := s.mgr.Read(ctx, rng)
	if err != nil {
		return nil, errors.Wrapf(err, "scanner: reading column %q", node.Element.Name)
	}

	var fixedLen int32
	if node.Element.TypeLength != nil {
		fixedLen = *node.Element.TypeLength
	}
	cur := page.NewCursor(bytes.NewReader(buf), cc.MetaData, cc.MetaData.Type, fixedLen, createdBy, s.cfg.MaxPageHeaderBytes)
	if err := cur.Init(); err != nil {
		return nil, errors.Wrapf(err, "scanner: initializing column %q", node.Element.Name)
	}
	return cur, nil
}

func (s *RowGroupScanner) scalarOptions(node *schema.Node) []column.ScalarOption {
	var opts []column.ScalarOption
	if node.Element.ConvertedType != nil && *node.Element.ConvertedType == format.ConvertedUTF8 && node.Element.TypeLength != nil {
		// CHAR(n) is modeled as a fixed-length UTF8 byte array; plain
		// VARCHAR/STRING carries no TypeLength and is left unpadded.
		opts = append(opts, column.WithCharLen(*node.Element.TypeLength))
	}
	if s.cfg.ConvertLegacyUTCTimestamps && node.Element.Type == format.Int96 {
		createdBy := ""
		if s.meta.CreatedBy != nil {
			createdBy = *s.meta.CreatedBy
		}
		if format.IsLegacyHiveWriter(createdBy) {
			opts = append(opts, column.WithLegacyUTCConversion(s.localZone))
		}
	}
	return opts
}

// buildItemReader recursively constructs a column.Item for node: a
// ScalarColumnReader at a leaf, or a CollectionColumnReader wrapping its
// leftmost child otherwise.
func (s *RowGroupScanner) buildItemReader(ctx context.Context, node *schema.Node, rg format.RowGroup, leaves map[*schema.Node]*column.ScalarColumnReader) (column.Item, error) {
	if node.IsLeaf() {
		cur, err := s.makeCursor(ctx, node, rg)
		if err != nil {
			return nil, err
		}
		r := column.NewScalarColumnReader(node, cur, s.cfg.BatchSize, -1, s.scalarOptions(node)...)
		leaves[node] = r
		return r, nil
	}
	if len(node.Children) == 0 {
		return nil, errors.Newf("scanner: group %q has no children", node.Element.Name)
	}
	child, err := s.buildItemReader(ctx, node.Children[0], rg, leaves)
	if err != nil {
		return nil, err
	}
	return column.NewCollectionColumnReader(node, child, -1), nil
}

func leftmostLeaf(n *schema.Node) *schema.Node {
	for !n.IsLeaf() {
		n = n.Children[0]
	}
	return n
}

// resolveColumnIndices maps each projected slot to the column index of the
// leaf it resolves to, purely by walking the schema tree already held in
// memory — no column chunk is read. The statistics-based row-group skip
// needs this mapping before deciding whether to read anything at all, so
// it must stay free of I/O; buildReaders recomputes the same mapping once
// a row group survives that check and its readers are actually built.
func (s *RowGroupScanner) resolveColumnIndices(projection []ColumnRequest) ([]int, error) {
	maxSlot := -1
	for _, req := range projection {
		if req.SlotIndex > maxSlot {
			maxSlot = req.SlotIndex
		}
	}
	slotToColumn := make([]int, maxSlot+1)
	for i := range slotToColumn {
		slotToColumn[i] = -1
	}
	for _, req := range projection {
		res, err := s.resolver.Resolve(req.Path)
		if err != nil {
			return nil, err
		}
		if res.Missing || res.PosField {
			continue
		}
		slotToColumn[req.SlotIndex] = res.Node.ColIdx
	}
	return slotToColumn, nil
}

// buildReaders resolves projection against the row group's schema tree and
// constructs one top-level reader binding per non-pos request, folding
// missing fields into template nulls (nothing to build) and binding
// ARRAY_POS requests onto their sibling item reader's PosSlotIndex.
func (s *RowGroupScanner) buildReaders(ctx context.Context, rg format.RowGroup, projection []ColumnRequest) ([]assemble.ReaderBinding, []int, error) {
	leaves := map[*schema.Node]*column.ScalarColumnReader{}
	var bindings []assemble.ReaderBinding
	// slotToColumn maps an output slot to the leaf's column index (only
	// meaningful for direct leaf bindings). Scan's statistics-based skip
	// uses resolveColumnIndices' copy of this mapping, not this one.
	slotToColumn := make([]int, 0)
	maxSlot := -1
	for _, req := range projection {
		if req.SlotIndex > maxSlot {
			maxSlot = req.SlotIndex
		}
	}
	slotToColumn = make([]int, maxSlot+1)
	for i := range slotToColumn {
		slotToColumn[i] = -1
	}

	var posRequests []ColumnRequest
	for _, req := range projection {
		res, err := s.resolver.Resolve(req.Path)
		if err != nil {
			return nil, nil, err
		}
		if res.Missing {
			continue
		}
		if res.PosField {
			posRequests = append(posRequests, req)
			continue
		}

		item, err := s.buildItemReader(ctx, res.Node, rg, leaves)
		if err != nil {
			return nil, nil, err
		}
		if sr, ok := item.(*column.ScalarColumnReader); ok {
			sr.SlotIndex = req.SlotIndex
			slotToColumn[req.SlotIndex] = res.Node.ColIdx
		} else if cr, ok := item.(*column.CollectionColumnReader); ok {
			cr.SlotIndex = req.SlotIndex
		}
		bindings = append(bindings, assemble.ReaderBinding{Reader: item, InCollection: item.MaxRepLevel() > 0})
	}

	for _, req := range posRequests {
		res, err := s.resolver.Resolve(req.Path)
		if err != nil {
			return nil, nil, err
		}
		if res.Missing {
			continue
		}
		leaf := leftmostLeaf(res.Node)
		sr, ok := leaves[leaf]
		if !ok {
			return nil, nil, errors.Wrapf(ErrMissingPosTarget, "path ending at %q", res.Node.Element.Name)
		}
		sr.PosSlotIndex = req.SlotIndex
	}

	return bindings, slotToColumn, nil
}
