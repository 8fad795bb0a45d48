// Package scanner implements RowGroupScanner, the top-level per-split
// driver: footer processing, schema tree construction, column reader
// creation, row-group selection and statistics-based skip, column chunk
// I/O, and the assembly loop.
package scanner

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log/level"

	"github.com/janplus/Impala/internal/assemble"
	"github.com/janplus/Impala/internal/column"
	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/ioservice"
	"github.com/janplus/Impala/internal/schema"
)

// RowGroupScanner drives one Parquet file split.
type RowGroupScanner struct {
	cfg      *Config
	mgr      ioservice.Manager
	path     string
	fileSize int64
	meta     *format.FileMetaData
	tree     *schema.Tree
	resolver *schema.Resolver
	localZone *time.Location
}

// Open reads the footer and builds the schema tree for path, leaving the
// scanner ready for one or more calls to Scan.
func Open(ctx context.Context, mgr ioservice.Manager, path string, cfg *Config) (*RowGroupScanner, error) {
	meta, fileSize, err := ReadFooter(ctx, mgr, path, cfg.FooterSizeBytes, cfg.MaxPageHeaderBytes)
	if err != nil {
		return nil, err
	}
	tree, err := schema.Build(meta.Schema)
	if err != nil {
		return nil, err
	}
	return &RowGroupScanner{
		cfg:       cfg,
		mgr:       mgr,
		path:      path,
		fileSize:  fileSize,
		meta:      meta,
		tree:      tree,
		resolver:  schema.NewResolver(tree, cfg.SchemaResolutionMode),
		localZone: time.Local,
	}, nil
}

// NumRowGroups reports how many row groups the file's footer declared.
func (s *RowGroupScanner) NumRowGroups() int { return len(s.meta.RowGroups) }

// Scan processes every row group this split owns, applying the
// statistics-based skip, running the assembler over each surviving row
// group, and forwarding committed batches to sink. templateWidth and
// template configure each row group's ScratchBatch; projection describes
// which output slot each logical column path fills.
func (s *RowGroupScanner) Scan(ctx context.Context, split SplitRange, projection []ColumnRequest, templateWidth int, template column.Row, sink assemble.OutputSink, rowLimit int64) (*assemble.Result, error) {
	overall := &assemble.Result{}
	for _, rg := range s.meta.RowGroups {
		if !split.OwnsRowGroup(rg) {
			s.cfg.Metrics.RowGroupSkipped("split-range")
			continue
		}
		level.Info(s.cfg.Logger).Log("msg", "row group assigned to split", "row_group", rg.Ordinal, "num_rows", rg.NumRows)

		colPhysType, colStats := s.rowGroupColumnStats(rg)

		slotToColumn, err := s.resolveColumnIndices(projection)
		if err != nil {
			if s.cfg.AbortOnError {
				return overall, err
			}
			level.Warn(s.cfg.Logger).Log("msg", "row group skipped: error resolving projection", "row_group", rg.Ordinal, "err", err)
			continue
		}

		if CanSkipRowGroup(colPhysType, colStats, s.cfg.Conjuncts, slotToColumn) {
			level.Info(s.cfg.Logger).Log("msg", "row group skipped", "reason", "stats-proved-empty", "row_group", rg.Ordinal)
			s.cfg.Metrics.RowGroupSkipped("stats-proved-empty")
			continue
		}

		bindings, _, err := s.buildReaders(ctx, rg, projection)
		if err != nil {
			if s.cfg.AbortOnError {
				return overall, err
			}
			level.Warn(s.cfg.Logger).Log("msg", "row group skipped: error building column readers", "row_group", rg.Ordinal, "err", err)
			continue
		}

		res, err := s.runAssembler(ctx, bindings, templateWidth, template, sink, rowLimit-overall.RowsEmitted)
		if err != nil {
			if s.cfg.AbortOnError {
				return overall, err
			}
			level.Warn(s.cfg.Logger).Log("msg", "row group aborted mid-assembly", "row_group", rg.Ordinal, "err", err)
			continue
		}
		overall.RowsEmitted += res.RowsEmitted
		if res.Cancelled {
			overall.Cancelled = true
			return overall, nil
		}

		if err := s.validateRowGroupEnd(bindings, rg, res.RowsEmitted); err != nil {
			if s.cfg.AbortOnError {
				return overall, err
			}
			level.Warn(s.cfg.Logger).Log("msg", "row group failed end-of-scan validation", "row_group", rg.Ordinal, "err", err)
		}

		if res.LimitReached || (rowLimit > 0 && overall.RowsEmitted >= rowLimit) {
			overall.LimitReached = true
			return overall, nil
		}
	}
	return overall, nil
}

func (s *RowGroupScanner) runAssembler(ctx context.Context, bindings []assemble.ReaderBinding, templateWidth int, template column.Row, sink assemble.OutputSink, remainingLimit int64) (*assemble.Result, error) {
	scratch := assemble.NewScratchBatch(s.cfg.BatchSize, templateWidth, template)
	filters := make([]*assemble.FilterBinding, 0, len(s.cfg.RuntimeFilters))
	for _, nf := range s.cfg.RuntimeFilters {
		filters = append(filters, &assemble.FilterBinding{
			Filter: nf.Filter,
			Slot:   nf.Slot,
			Stats:  &assemble.FilterStats{Enabled: !nf.Filter.AlwaysTrue()},
		})
	}
	asm, err := assemble.New(assemble.Config{
		Readers:            bindings,
		Scratch:            scratch,
		Conjuncts:          s.cfg.Conjuncts,
		Filters:            filters,
		Sink:               sink,
		OutputBatchSize:    s.cfg.BatchSize,
		RowsPerFilterCheck: s.cfg.RowsPerFilterCheck,
		MinRejectRatio:     s.cfg.FilterMinRejectRatio,
		RowLimit:           remainingLimit,
		Metrics:            s.cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return asm.Run(ctx)
}

// rowGroupColumnStats collects per-leaf-column physical type and
// statistics, indexed by column position, for the statistics-based skip.
func (s *RowGroupScanner) rowGroupColumnStats(rg format.RowGroup) ([]format.PhysicalType, []*format.Statistics) {
	physType := make([]format.PhysicalType, len(rg.Columns))
	stats := make([]*format.Statistics, len(rg.Columns))
	for i, cc := range rg.Columns {
		if cc.MetaData == nil {
			continue
		}
		physType[i] = cc.MetaData.Type
		stats[i] = cc.MetaData.Statistics
	}
	return physType, stats
}

// validateRowGroupEnd checks that every non-collection reader has fully
// drained its declared value count, and, if no reader has a repeated
// ancestor, that the number of rows emitted matches the row group's
// declared row count.
func (s *RowGroupScanner) validateRowGroupEnd(bindings []assemble.ReaderBinding, rg format.RowGroup, rowsEmitted int64) error {
	allFlat := true
	for _, b := range bindings {
		sr, ok := b.Reader.(*column.ScalarColumnReader)
		if !ok {
			continue // CollectionColumnReader reflects its children's state
		}
		if sr.MaxRepLevel() > 0 {
			allFlat = false
		}
		if !sr.RowGroupAtEnd() {
			return errors.Newf("scanner: row group %d: column reader did not reach row group end", rg.Ordinal)
		}
	}
	if allFlat && rowsEmitted != rg.NumRows {
		return errors.Newf("scanner: row group %d: emitted %d rows, row group declares %d", rg.Ordinal, rowsEmitted, rg.NumRows)
	}
	return nil
}

