package streamerr

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

// TestErrorKinds verifies that errors.Is matches on the kind and the cause
func TestErrorKinds(t *testing.T) {
	err := Wrap(ErrMissingFile, "/data/Octopus_1.dth", os.ErrNotExist)

	if !errors.Is(err, ErrMissingFile) {
		t.Error("Expected error to match ErrMissingFile")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected error to unwrap to os.ErrNotExist")
	}
	if errors.Is(err, ErrCorruptChunk) {
		t.Error("Did not expect error to match ErrCorruptChunk")
	}

	wrapped := fmt.Errorf("open stream: %w", err)
	if !errors.Is(wrapped, ErrMissingFile) {
		t.Error("Expected wrapped error to match ErrMissingFile")
	}

	var se *Error
	if !errors.As(wrapped, &se) {
		t.Fatal("Expected errors.As to find *Error")
	}
	if se.Path != "/data/Octopus_1.dth" {
		t.Errorf("Expected path /data/Octopus_1.dth, got %s", se.Path)
	}
}

// TestErrorMessage verifies the message carries kind, path and detail
func TestErrorMessage(t *testing.T) {
	err := New(ErrCorruptChunk, "a_2.dat", "size %d, expected %d", 10, 20)
	msg := err.Error()
	for _, want := range []string{"corrupt chunk", "a_2.dat", "size 10, expected 20"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected message %q to contain %q", msg, want)
		}
	}
}
