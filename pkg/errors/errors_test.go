package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeStateConflict, "cannot deliver from received")
	if err.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Message() != "cannot deliver from received" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if err.Error() != "STATE_CONFLICT: cannot deliver from received" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row not found")
	err := Wrap(CodeNotFound, cause, "load order")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to satisfy errors.Is")
	}
	if err.Unwrap() != cause {
		t.Fatal("expected Unwrap to return cause")
	}
}

func TestAsUnwrapsThroughFmtErrors(t *testing.T) {
	inner := New(CodeValidation, "bad priority")
	wrapped := fmt.Errorf("handler: %w", inner)
	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeValidation {
		t.Fatalf("expected typed validation error, got %v", typed)
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
	if MetadataFor(CodeStateConflict).HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatal("state conflict should map to 422")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"title": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["title"] != "is required" {
		t.Fatalf("unexpected details %v", err.Details())
	}
}
