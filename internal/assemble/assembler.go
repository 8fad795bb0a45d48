package assemble

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/janplus/Impala/internal/column"
	"github.com/janplus/Impala/internal/conjunct"
	"github.com/janplus/Impala/internal/conjunct/filter"
	"github.com/janplus/Impala/internal/scanmetrics"
)

// ErrTupleCountMismatch is the tie-check failure: two column readers
// disagreed about how many tuples they produced for the same
// scratch-batch pass, which can only mean a reader bug or file
// corruption, never a legitimate per-column difference.
var ErrTupleCountMismatch = errors.New("assemble: column readers produced different tuple counts")

// ErrCancelled and ErrLimitReached are the two clean, non-error exit
// paths: the caller asked to stop, or the scan-level row limit was
// reached. Run returns nil on both — callers that care which one fired
// check the Cancelled/LimitReached fields of the returned *Result.
var (
	ErrCancelled    = errors.New("assemble: cancelled")
	ErrLimitReached = errors.New("assemble: row limit reached")
)

// ReaderBinding pairs a column reader with which of its two materialization
// entry points the assembler must call for it: readers whose node sits
// inside a repeated ancestor use ReadValueBatch, everything else uses
// ReadNonRepeatedValueBatch.
type ReaderBinding struct {
	Reader       column.Reader
	InCollection bool
}

// FilterBinding pairs one runtime filter with the output slot it
// evaluates and its per-scanner effectiveness stats.
type FilterBinding struct {
	Filter filter.RuntimeFilter
	Slot   int
	Stats  *FilterStats
}

// OutputSink receives a full (or final, partial) committed batch. Returning
// an error aborts the assembler's Run.
type OutputSink func(rows []column.Row) error

// RowAssembler drives one row group over a fixed-size scratch batch.
type RowAssembler struct {
	readers   []ReaderBinding
	batch     *ScratchBatch
	conjuncts []conjunct.Evaluator
	filters   []*FilterBinding
	sink      OutputSink
	metrics   *scanmetrics.Metrics

	outputCap          int
	output             []column.Row
	outputWidth        int
	rowsPerFilterCheck int64
	minRejectRatio     float64
	rowsSinceCheck     int64
	rowLimit           int64
	rowsEmitted        int64
}

// Config configures a RowAssembler.
type Config struct {
	Readers            []ReaderBinding
	Scratch            *ScratchBatch
	Conjuncts          []conjunct.Evaluator
	Filters            []*FilterBinding
	Sink               OutputSink
	OutputBatchSize    int
	RowsPerFilterCheck int64 // must be a power of two; 16384 is a typical default
	MinRejectRatio     float64
	RowLimit           int64 // 0 means unbounded
	Metrics            *scanmetrics.Metrics
}

// New constructs a RowAssembler from cfg.
func New(cfg Config) (*RowAssembler, error) {
	if cfg.RowsPerFilterCheck <= 0 || cfg.RowsPerFilterCheck&(cfg.RowsPerFilterCheck-1) != 0 {
		return nil, errors.Newf("assemble: rows_per_filter_check must be a power of two, got %d", cfg.RowsPerFilterCheck)
	}
	width := cfg.Scratch.width
	return &RowAssembler{
		readers:            cfg.Readers,
		batch:              cfg.Scratch,
		conjuncts:          cfg.Conjuncts,
		filters:            cfg.Filters,
		sink:               cfg.Sink,
		metrics:            cfg.Metrics,
		outputCap:          cfg.OutputBatchSize,
		outputWidth:        width,
		output:             make([]column.Row, 0, cfg.OutputBatchSize),
		rowsPerFilterCheck: cfg.RowsPerFilterCheck,
		minRejectRatio:     cfg.MinRejectRatio,
		rowLimit:           cfg.RowLimit,
	}, nil
}

// Result reports how Run stopped.
type Result struct {
	RowsEmitted  int64
	Cancelled    bool
	LimitReached bool
}

// Run drives the assembler until the row group ends, a parse error occurs,
// ctx is cancelled, or the row limit is reached.
func (a *RowAssembler) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	for {
		if a.rowLimit > 0 && a.rowsEmitted >= a.rowLimit {
			res.LimitReached = true
			break
		}
		select {
		case <-ctx.Done():
			res.Cancelled = true
			if err := a.flush(); err != nil {
				return res, err
			}
			return res, nil
		default:
		}

		a.batch.Reset()
		n, atEnd, err := a.fillPass()
		if err != nil {
			return res, err
		}
		a.batch.NumTuples = n

		if n > 0 {
			if err := a.drain(n); err != nil {
				return res, err
			}
		}
		if a.rowLimit > 0 && a.rowsEmitted >= a.rowLimit {
			res.LimitReached = true
			break
		}
		if atEnd {
			break
		}
	}
	res.RowsEmitted = a.rowsEmitted
	if err := a.flush(); err != nil {
		return res, err
	}
	return res, nil
}

// fillPass asks every bound reader to fill the scratch batch and enforces
// the tie check.
func (a *RowAssembler) fillPass() (n int, atEnd bool, err error) {
	capacity := a.batch.Capacity()
	rows := a.batch.Rows()
	first := -1
	anyEnd := false
	for _, rb := range a.readers {
		var got int
		var rerr error
		if rb.InCollection {
			got, rerr = rb.Reader.ReadValueBatch(capacity, rows)
		} else {
			got, rerr = rb.Reader.ReadNonRepeatedValueBatch(capacity, rows)
		}
		if rerr != nil {
			return 0, false, rerr
		}
		if first < 0 {
			first = got
		} else if got != first {
			return 0, false, errors.Wrapf(ErrTupleCountMismatch, "%d vs %d", first, got)
		}
		if rb.Reader.RowGroupAtEnd() {
			anyEnd = true
		}
	}
	if first < 0 {
		first = 0
	}
	return first, anyEnd, nil
}

// drain walks the n filled scratch tuples, applying enabled runtime
// filters then SQL conjuncts, appending survivors to the output batch and
// running the adaptive-disable check every K rows.
func (a *RowAssembler) drain(n int) error {
	rows := a.batch.Rows()
	for i := 0; i < n; i++ {
		if a.rowLimit > 0 && a.rowsEmitted >= a.rowLimit {
			return nil
		}
		row := rows[i]
		survived, err := a.evalFilters(row)
		if err != nil {
			return err
		}
		a.rowsSinceCheck++
		if a.rowsSinceCheck&(a.rowsPerFilterCheck-1) == 0 {
			a.checkAdaptiveDisable()
		}
		if !survived {
			continue
		}

		ok, err := conjunct.And(a.conjuncts, row)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if err := a.commit(row); err != nil {
			return err
		}
	}
	return nil
}

func (a *RowAssembler) evalFilters(row column.Row) (bool, error) {
	for _, fb := range a.filters {
		if !fb.Stats.Enabled {
			continue
		}
		fb.Stats.Considered++
		fb.Stats.TotalPossible++
		if fb.Slot < 0 || fb.Slot >= len(row) || row[fb.Slot].Null {
			continue
		}
		ok, err := fb.Filter.Eval(row[fb.Slot].Value)
		if err != nil {
			return false, err
		}
		if !ok {
			fb.Stats.Rejected++
			return false, nil
		}
	}
	return true, nil
}

func (a *RowAssembler) checkAdaptiveDisable() {
	for _, fb := range a.filters {
		if !fb.Stats.Enabled {
			continue
		}
		if fb.Filter.AlwaysTrue() || fb.Stats.ShouldDisable(a.minRejectRatio) {
			fb.Stats.Enabled = false
			a.metrics.FilterDisabled()
		}
	}
}

// commit copies row into the output batch's backing store, yielding a full
// batch upward when it fills.
func (a *RowAssembler) commit(row column.Row) error {
	out := make(column.Row, a.outputWidth)
	copy(out, row)
	a.output = append(a.output, out)
	a.rowsEmitted++
	if len(a.output) >= a.outputCap {
		return a.flush()
	}
	return nil
}

func (a *RowAssembler) flush() error {
	if len(a.output) == 0 {
		return nil
	}
	rows := a.output
	a.output = make([]column.Row, 0, a.outputCap)
	a.metrics.RowsMaterialized(len(rows))
	if a.sink == nil {
		return nil
	}
	return a.sink(rows)
}
