package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeValidation, cause, "bad input")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be discoverable")
	}
	if err.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsTypedError(t *testing.T) {
	inner := New(CodeConfirmation, "stock would go negative")
	wrapped := fmt.Errorf("checkout: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeConfirmation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeNotFound, "missing")
	if !IsCode(err, CodeNotFound) {
		t.Fatal("expected IsCode to match")
	}
	if IsCode(err, CodeConflict) {
		t.Fatal("unexpected match")
	}
	if IsCode(nil, CodeNotFound) {
		t.Fatal("nil error must not match")
	}
}
