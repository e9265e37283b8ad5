package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	first, err := NewUUIDGenerator().NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("parse %q: %v", first, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("version = %d, want 7", parsed.Version())
	}

	second, err := NewUUIDGenerator().NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
}

func TestPrefixedGenerator(t *testing.T) {
	got, err := NewPrefixedGenerator("pick").NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	rest, ok := strings.CutPrefix(got, "pick_")
	if !ok {
		t.Fatalf("expected pick_ prefix, got %q", got)
	}
	if _, err := uuid.Parse(rest); err != nil {
		t.Fatalf("suffix is not a uuid: %v", err)
	}
}
