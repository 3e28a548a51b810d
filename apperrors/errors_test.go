package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrappersMatchSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{InvalidArgumentf("bad input %d", 1), ErrInvalidArgument},
		{NotFoundf("missing"), ErrNotFound},
		{Forbiddenf("needs admin"), ErrForbidden},
		{Gonef("used up"), ErrGone},
		{InvalidStatef("too late"), ErrInvalidState},
		{Conflictf("duplicate"), ErrConflict},
		{Internal("fetch row", errors.New("connection reset")), ErrInternal},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
		}
	}
}

func TestWrappersDoNotCrossMatch(t *testing.T) {
	err := NotFoundf("missing folder")
	if errors.Is(err, ErrForbidden) {
		t.Error("a not-found error must not match ErrForbidden")
	}
	if errors.Is(err, ErrInternal) {
		t.Error("a not-found error must not match ErrInternal")
	}
}

func TestReWrappingKeepsSentinel(t *testing.T) {
	inner := Conflictf("folder %q already exists", "docs")
	outer := fmt.Errorf("create folder: %w", inner)

	if !errors.Is(outer, ErrConflict) {
		t.Error("wrapping with %w should preserve the sentinel")
	}
}

func TestInternalKeepsMessage(t *testing.T) {
	err := Internal("insert file", errors.New("duplicate key"))
	if got := err.Error(); got == "" || !errors.Is(err, ErrInternal) {
		t.Fatalf("unexpected internal error: %v", got)
	}
}
