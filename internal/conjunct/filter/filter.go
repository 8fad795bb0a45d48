// Package filter implements the runtime filters that back the assembler's
// adaptive-disable path: eval_filter(value) -> bool plus an always_true()
// signal a filter can raise once further evaluation is provably useless.
package filter

import "github.com/janplus/Impala/internal/valdecode"

// RuntimeFilter is the eval_filter(value, type) -> bool plus always_true()
// surface, the signal the assembler uses to skip a filter that can never
// reject anything.
type RuntimeFilter interface {
	Eval(v valdecode.Value) (bool, error)
	AlwaysTrue() bool
}

// MinMaxRange rejects any value strictly outside [Min, Max] (inclusive).
type MinMaxRange struct {
	Min, Max valdecode.Value
}

// Eval returns true (the value survives) iff Min <= v <= Max.
func (r MinMaxRange) Eval(v valdecode.Value) (bool, error) {
	loCmp, err := valdecode.Compare(v, r.Min)
	if err != nil {
		return false, err
	}
	if loCmp < 0 {
		return false, nil
	}
	hiCmp, err := valdecode.Compare(v, r.Max)
	if err != nil {
		return false, err
	}
	return hiCmp <= 0, nil
}

// AlwaysTrue is always false: a min/max range can genuinely reject values.
func (r MinMaxRange) AlwaysTrue() bool { return false }

// BloomPlaceholder stands in for a real bloom-filter runtime filter. No
// suitable bloom-filter library was available to wire in, so this always
// accepts rather than silently behaving like a working filter.
type BloomPlaceholder struct{}

// Eval always reports the value as surviving.
func (BloomPlaceholder) Eval(valdecode.Value) (bool, error) { return true, nil }

// AlwaysTrue reports this filter can never reject anything, so the
// assembler's adaptive-disable pass can short-circuit it for free instead
// of spending a rejected/considered cycle proving what's already known.
func (BloomPlaceholder) AlwaysTrue() bool { return true }
