package errors

import (
	"fmt"
	"testing"
)

func TestFetcherError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeStateNotFound, "state file not found")
	if err.Code != ErrCodeStateNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeStateNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodePersistence, "flush failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodePersistence) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeStateNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("path", "/tmp/state.json").WithDetail("attempt", 2)
	if detailed.Details["path"] != "/tmp/state.json" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test Persistence
	err := Persistence("/var/state.json", fmt.Errorf("disk full"))
	if err.Code != ErrCodePersistence {
		t.Errorf("expected code %s, got %s", ErrCodePersistence, err.Code)
	}
	if err.Details["path"] != "/var/state.json" {
		t.Error("Persistence should include path detail")
	}

	// Test InputShape
	err = InputShape("RoomUpdate", "checked_locations")
	if err.Code != ErrCodeInputShape {
		t.Errorf("expected code %s, got %s", ErrCodeInputShape, err.Code)
	}
	if err.Details["field"] != "checked_locations" {
		t.Error("InputShape should include field detail")
	}

	// Test AlreadyRunning
	err = AlreadyRunning(4242)
	if err.Code != ErrCodeAlreadyRunning {
		t.Errorf("expected code %s, got %s", ErrCodeAlreadyRunning, err.Code)
	}
	if err.Details["pid"] != 4242 {
		t.Error("AlreadyRunning should include pid detail")
	}
}

func TestConnectionRefused(t *testing.T) {
	err := ConnectionRefused([]string{"InvalidSlot", "InvalidPassword"})
	if err.Code != ErrCodeConnectionRefused {
		t.Errorf("expected code %s, got %s", ErrCodeConnectionRefused, err.Code)
	}
	want := "CONNECTION_REFUSED: connection refused by server: InvalidSlot; InvalidPassword"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	// No reasons still produces a usable message
	err = ConnectionRefused(nil)
	if err.Message != "connection refused by server" {
		t.Errorf("unexpected message: %s", err.Message)
	}
}
