package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	base := New(CodeNotFound, "record not found")
	wrapped := fmt.Errorf("load player: %w", base)

	if !errors.Is(wrapped, New(CodeNotFound, "other message")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if errors.Is(wrapped, New(CodeEventMalformed, "record not found")) {
		t.Fatal("expected errors.Is to reject a different code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStorageUnavailable, "put owner", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if err.Error() != "put owner" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "put owner")
	}
}
