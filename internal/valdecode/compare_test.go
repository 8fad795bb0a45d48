package valdecode

import (
	"testing"

	"github.com/janplus/Impala/internal/format"
)

func TestCompareInt32(t *testing.T) {
	a := Value{Type: format.Int32, Int32: 5}
	b := Value{Type: format.Int32, Int32: 10}
	if cmp, err := Compare(a, b); err != nil || cmp >= 0 {
		t.Fatalf("Compare(5, 10) = (%d, %v), want negative", cmp, err)
	}
	if cmp, err := Compare(b, a); err != nil || cmp <= 0 {
		t.Fatalf("Compare(10, 5) = (%d, %v), want positive", cmp, err)
	}
	if cmp, err := Compare(a, a); err != nil || cmp != 0 {
		t.Fatalf("Compare(5, 5) = (%d, %v), want 0", cmp, err)
	}
}

func TestCompareByteArray(t *testing.T) {
	a := Value{Type: format.ByteArray, Bytes: []byte("abc")}
	b := Value{Type: format.ByteArray, Bytes: []byte("abd")}
	if cmp, err := Compare(a, b); err != nil || cmp >= 0 {
		t.Fatalf("Compare(abc, abd) = (%d, %v), want negative", cmp, err)
	}
}

func TestCompareDouble(t *testing.T) {
	a := Value{Type: format.Double, Float64: 1.5}
	b := Value{Type: format.Double, Float64: 1.5}
	if cmp, err := Compare(a, b); err != nil || cmp != 0 {
		t.Fatalf("Compare(1.5, 1.5) = (%d, %v), want 0", cmp, err)
	}
}

func TestCompareMismatchedTypesIsError(t *testing.T) {
	a := Value{Type: format.Int32, Int32: 1}
	b := Value{Type: format.Int64, Int64: 1}
	if _, err := Compare(a, b); err == nil {
		t.Fatal("expected an error comparing mismatched types")
	}
}

func TestCompareInt96IsIncomparable(t *testing.T) {
	a := Value{Type: format.Int96}
	b := Value{Type: format.Int96}
	if _, err := Compare(a, b); err == nil {
		t.Fatal("expected ErrIncomparableType comparing raw INT96 values")
	}
}

func TestCompareBoolean(t *testing.T) {
	f := Value{Type: format.Boolean, Bool: false}
	tr := Value{Type: format.Boolean, Bool: true}
	if cmp, err := Compare(f, tr); err != nil || cmp >= 0 {
		t.Fatalf("Compare(false, true) = (%d, %v), want negative", cmp, err)
	}
}
