package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestPasswordLifecycle(t *testing.T) {
	gokeyring.MockInit()

	const id = "0123456789abcdef0123456789abcdef"

	if HasPassword(id) {
		t.Fatal("No password should be stored yet")
	}
	if _, err := GetPassword(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := SavePassword(id, "hunter2"); err != nil {
		t.Fatalf("Failed to save password: %v", err)
	}
	if !HasPassword(id) {
		t.Error("Password should be stored")
	}

	got, err := GetPassword(id)
	if err != nil {
		t.Fatalf("Failed to get password: %v", err)
	}
	if got != "hunter2" {
		t.Errorf("Password mismatch: got %q", got)
	}

	if err := DeletePassword(id); err != nil {
		t.Fatalf("Failed to delete password: %v", err)
	}
	if HasPassword(id) {
		t.Error("Password should be gone")
	}

	// Deleting again is fine
	if err := DeletePassword(id); err != nil {
		t.Errorf("Second delete should not fail: %v", err)
	}
}
