package scanner

import "github.com/cockroachdb/errors"

// Sentinel errors distinguished at call sites via errors.Is/errors.As
// rather than string matching.
var (
	ErrBadMagic            = errors.New("parquetrg: bad footer magic")
	ErrUnsupportedCodec    = errors.New("parquetrg: unsupported compression codec")
	ErrUnsupportedEncoding = errors.New("parquetrg: unsupported encoding")
	ErrHeaderTooLarge      = errors.New("parquetrg: page header exceeds configured ceiling")
	ErrLevelOutOfRange     = errors.New("parquetrg: decoded level exceeds max_level")
	ErrTruncated           = errors.New("parquetrg: truncated column data")
	ErrResourceExhausted   = errors.New("parquetrg: memory tracker refused allocation")

	// ErrRowLimitReached names the LimitReached exit. Scan does not return
	// it: it reports the limit via Result.LimitReached with a nil error.
	ErrRowLimitReached = errors.New("parquetrg: scan-level row limit reached")
)
