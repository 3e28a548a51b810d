package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"nimbusdrive/apperrors"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", apperrors.InvalidArgumentf("bad"), http.StatusBadRequest},
		{"not found", apperrors.NotFoundf("missing"), http.StatusNotFound},
		{"forbidden", apperrors.Forbiddenf("no"), http.StatusForbidden},
		{"gone", apperrors.Gonef("expired"), http.StatusGone},
		{"invalid state", apperrors.InvalidStatef("too late"), http.StatusUnprocessableEntity},
		{"conflict", apperrors.Conflictf("duplicate"), http.StatusConflict},
		{"internal", apperrors.Internal("op", errors.New("boom")), http.StatusInternalServerError},
		{"unknown error", errors.New("anything"), http.StatusInternalServerError},
		{"wrapped twice", fmt.Errorf("outer: %w", apperrors.NotFoundf("inner")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFromError(tt.err); got != tt.want {
				t.Errorf("StatusFromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
