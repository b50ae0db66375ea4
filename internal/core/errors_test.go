// internal/core/errors_test.go
package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{Code: "TEST_ERROR", Message: "test message"}
	if err.Error() != "[TEST_ERROR] test message" {
		t.Errorf("unexpected error string: %s", err.Error())
	}
}

func TestError_ErrorWithCause(t *testing.T) {
	err := WrapError(ErrArtifactMissing, errors.New("run_01"))
	want := "[ARTIFACT_MISSING] no readable report or trade log: run_01"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{Code: "WRAP", Message: "wrapped", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should return cause")
	}
}

func TestError_Is(t *testing.T) {
	if !errors.Is(ErrNoRuns, ErrNoRuns) {
		t.Error("same error should match")
	}
	if errors.Is(ErrNoRuns, ErrNoReports) {
		t.Error("different codes should not match")
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("original")
	wrapped := WrapError(ErrMetadataInvalid, cause)
	if wrapped.Cause != cause {
		t.Error("cause not set")
	}
	if wrapped.Code != ErrMetadataInvalid.Code {
		t.Error("code not preserved")
	}

	outer := fmt.Errorf("loading run: %w", wrapped)
	if !errors.Is(outer, ErrMetadataInvalid) {
		t.Error("code should match through fmt wrapping")
	}
}
