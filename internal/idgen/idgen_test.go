package idgen

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	id, err := Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.HasPrefix(id, DefaultPrefix) {
		t.Errorf("Generate() = %q, want prefix %q", id, DefaultPrefix)
	}
	if len(id) != len(DefaultPrefix)+Length {
		t.Errorf("Generate() length = %d, want %d", len(id), len(DefaultPrefix)+Length)
	}
	for _, r := range strings.TrimPrefix(id, DefaultPrefix) {
		if !strings.ContainsRune(Alphabet, r) {
			t.Errorf("Generate() = %q contains %q outside the alphabet", id, r)
		}
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	id, err := GenerateWithPrefix("inv-")
	if err != nil {
		t.Fatalf("GenerateWithPrefix() error: %v", err)
	}
	if !strings.HasPrefix(id, "inv-") {
		t.Errorf("GenerateWithPrefix() = %q, want prefix inv-", id)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if seen[id] {
			t.Fatalf("Generate() produced duplicate %q", id)
		}
		seen[id] = true
	}
}
