package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "resource not found")
		if err.Error() != "[NOT_FOUND] resource not found" {
			t.Errorf("expected [NOT_FOUND] resource not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		if !IsCode(err, CodeInternal) {
			t.Error("expected IsCode to return true for wrapped CodeInternal")
		}
	})
}

func TestAddContext(t *testing.T) {
	t.Run("DomainError", func(t *testing.T) {
		err := AddContext(New(CodeNotFound, "file not found"), CtxPath, "convex/schema.ts")
		err = AddContext(err, CtxPhase, 1)
		expected := "[NOT_FOUND] file not found (path=convex/schema.ts phase=1)"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("KeepsOuterWrap", func(t *testing.T) {
		inner := New(CodePermissionDenied, "read-only")
		outer := fmt.Errorf("writing marker: %w", inner)
		err := AddContext(outer, CtxOperation, "marker")
		if err != outer {
			t.Fatalf("expected the original chain to be returned")
		}
		if !IsCode(err, CodePermissionDenied) {
			t.Errorf("expected code to survive wrapping")
		}
	})

	t.Run("PlainError", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxRunID, "abc")
		if CodeOf(err) != CodeInternal {
			t.Errorf("expected INTERNAL_ERROR, got %s", CodeOf(err))
		}
	})

	t.Run("Nil", func(t *testing.T) {
		if AddContext(nil, CtxPath, "x") != nil {
			t.Error("expected nil")
		}
	})
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(Wrap(errors.New("x"), CodeNotSupported, "no grammar")); got != CodeNotSupported {
		t.Errorf("expected NOT_SUPPORTED, got %s", got)
	}
	if got := CodeOf(errors.New("x")); got != CodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got)
	}
}
