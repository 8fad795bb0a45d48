// Package assemble drives the RowAssembler: the scratch-batch
// fill/filter/drain loop that turns per-column reader output into
// committed output rows.
package assemble

// FilterStats tracks one runtime filter's effectiveness for one scanner,
// one row group at a time. The assembler mutates it and decides, every K
// rows, whether the filter has earned its keep.
type FilterStats struct {
	Enabled       bool
	Considered    int64
	Rejected      int64
	TotalPossible int64
}

// ShouldDisable reports whether, given minRejectRatio, this filter has
// rejected too small a fraction of what it considered to be worth the
// per-row cost of continuing to evaluate it.
func (f *FilterStats) ShouldDisable(minRejectRatio float64) bool {
	if f.Considered == 0 {
		return false
	}
	ratio := float64(f.Rejected) / float64(f.Considered)
	return ratio < minRejectRatio
}
