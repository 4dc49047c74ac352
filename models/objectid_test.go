package models

import "testing"

func TestNewObjectIDFormat(t *testing.T) {
	id := NewObjectID()
	if len(id) != 24 {
		t.Fatalf("expected 24 chars, got %d (%q)", len(id), id)
	}
	if !IsObjectID(id) {
		t.Fatalf("generated id %q does not validate", id)
	}
}

func TestNewObjectIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewObjectID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestIsObjectIDRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"abc",
		"ABCDEF0123456789ABCDEF01",         // uppercase
		"zzzzzzzzzzzzzzzzzzzzzzzz",         // non-hex
		"0123456789abcdef0123456789abcdef", // too long
		"0123456789abcdef0123456",          // 23 chars
	}
	for _, s := range bad {
		if IsObjectID(s) {
			t.Errorf("IsObjectID(%q) = true, want false", s)
		}
	}
}
