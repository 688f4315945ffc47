package groundseg

import (
	"errors"
	"testing"
)

func TestIsKindMatchesWrappedError(t *testing.T) {
	base := errors.New("boom")
	err := newError(NumericSingular, "fitPlane", base)
	if !IsKind(err, NumericSingular) {
		t.Errorf("expected IsKind to match NumericSingular")
	}
	if IsKind(err, Invariant) {
		t.Errorf("expected IsKind not to match a different kind")
	}
	if !errors.Is(err, base) {
		t.Errorf("expected errors.Is to see through to the wrapped error")
	}
}

func TestIsKindFalseForPlainError(t *testing.T) {
	if IsKind(errors.New("plain"), Invariant) {
		t.Errorf("IsKind should be false for a non-*Error value")
	}
	if IsKind(nil, Invariant) {
		t.Errorf("IsKind should be false for nil")
	}
}

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		Invariant:       "INVARIANT",
		EmptyInput:      "EMPTY_INPUT",
		NumericSingular: "NUMERIC_SINGULAR",
		NonConvergence:  "NONCONVERGENCE",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", int(kind), got, want)
		}
	}
}
