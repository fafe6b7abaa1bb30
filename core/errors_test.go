package core

import (
	"testing"

	"github.com/pkg/errors"
)

func TestValidationError_FieldMap(t *testing.T) {
	err := NewValidationError(errors.New("course code already exists"),
		FieldError{Field: "code", Error: "course code already exists"},
		FieldError{Field: "name", Error: "name is too short"},
	)
	vErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	flds := vErr.FieldMap()
	if len(flds) != 2 {
		t.Fatalf("FieldMap() len = %d, want 2", len(flds))
	}
	if got := flds["code"]; got != "course code already exists" {
		t.Errorf("FieldMap()[code] = %q", got)
	}
	if got := vErr.Error(); got != "course code already exists" {
		t.Errorf("Error() = %q", got)
	}

	bare := &ValidationError{Err: errors.New("bad request")}
	if bare.FieldMap() != nil {
		t.Error("FieldMap() on fieldless error should be nil")
	}
}

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError("store is gone")
	if !IsShutdown(err) {
		t.Error("IsShutdown(shutdown) = false")
	}
	if !IsShutdown(errors.Wrap(err, "querying courses")) {
		t.Error("IsShutdown(wrapped shutdown) = false")
	}
	if IsShutdown(errors.New("boom")) {
		t.Error("IsShutdown(plain error) = true")
	}
}
