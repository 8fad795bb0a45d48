package scanner

import (
	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"

	"github.com/janplus/Impala/internal/conjunct"
	"github.com/janplus/Impala/internal/conjunct/filter"
	"github.com/janplus/Impala/internal/schema"
	"github.com/janplus/Impala/internal/scanmetrics"
)

// Config carries the scanner's recognized tuning options plus the ambient
// logging/metrics wiring.
type Config struct {
	FooterSizeBytes            int64
	MaxPageHeaderBytes         int
	FilterMinRejectRatio       float64
	RowsPerFilterCheck         int64
	ConvertLegacyUTCTimestamps bool
	SchemaResolutionMode       schema.ResolutionMode
	AbortOnError               bool

	BatchSize int
	Logger    log.Logger
	Metrics   *scanmetrics.Metrics

	Conjuncts      []conjunct.Evaluator
	RuntimeFilters []NamedFilter
}

// NamedFilter binds a runtime filter to the output slot it evaluates, for
// the FilterStats bookkeeping the assembler drives.
type NamedFilter struct {
	Slot   int
	Filter filter.RuntimeFilter
}

// Option configures a Config via NewConfig's functional-options
// constructor.
type Option func(*Config)

func WithFooterSizeBytes(n int64) Option         { return func(c *Config) { c.FooterSizeBytes = n } }
func WithMaxPageHeaderBytes(n int) Option        { return func(c *Config) { c.MaxPageHeaderBytes = n } }
func WithFilterMinRejectRatio(r float64) Option  { return func(c *Config) { c.FilterMinRejectRatio = r } }
func WithRowsPerFilterCheck(n int64) Option      { return func(c *Config) { c.RowsPerFilterCheck = n } }
func WithConvertLegacyUTCTimestamps(b bool) Option {
	return func(c *Config) { c.ConvertLegacyUTCTimestamps = b }
}
func WithSchemaResolutionMode(m schema.ResolutionMode) Option {
	return func(c *Config) { c.SchemaResolutionMode = m }
}
func WithAbortOnError(b bool) Option         { return func(c *Config) { c.AbortOnError = b } }
func WithBatchSize(n int) Option             { return func(c *Config) { c.BatchSize = n } }
func WithLogger(l log.Logger) Option         { return func(c *Config) { c.Logger = l } }
func WithMetrics(m *scanmetrics.Metrics) Option { return func(c *Config) { c.Metrics = m } }
func WithConjuncts(cs ...conjunct.Evaluator) Option {
	return func(c *Config) { c.Conjuncts = append(c.Conjuncts, cs...) }
}
func WithRuntimeFilter(slot int, f filter.RuntimeFilter) Option {
	return func(c *Config) { c.RuntimeFilters = append(c.RuntimeFilters, NamedFilter{Slot: slot, Filter: f}) }
}

// NewConfig builds a Config from opts, applying defaults and validating
// RowsPerFilterCheck is a power of two (the assembler's bitmask-based
// adaptive-disable check requires it).
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		FooterSizeBytes:      100 * 1024,
		MaxPageHeaderBytes:   8 * 1024 * 1024,
		FilterMinRejectRatio: 0.1,
		RowsPerFilterCheck:   16384,
		SchemaResolutionMode: schema.ByName,
		BatchSize:            1024,
		Logger:               log.NewNopLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.RowsPerFilterCheck <= 0 || c.RowsPerFilterCheck&(c.RowsPerFilterCheck-1) != 0 {
		return nil, errors.Newf("scanner: rows_per_filter_check must be a power of two, got %d", c.RowsPerFilterCheck)
	}
	if c.Logger == nil {
		c.Logger = log.NewNopLogger()
	}
	return c, nil
}
