package cache

import (
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key1a := GenerateKey("search", "golang", "")
	key1b := GenerateKey("search", "golang", "")
	key2 := GenerateKey("search", "golang", "CAoQAA")

	if key1a != key1b {
		t.Errorf("Expected same key for same parts, got %s != %s", key1a, key1b)
	}
	if key1a == key2 {
		t.Errorf("Expected different keys for different parts, but got same: %s", key1a)
	}
	if !strings.HasPrefix(key1a, "search:") {
		t.Errorf("Expected key to start with search:, got %s", key1a)
	}

	// 8 bytes of hash -> 16 hex characters
	if len(key1a) != len("search:")+16 {
		t.Errorf("Expected 16 hex characters after prefix, got %s", key1a)
	}
}

func TestGenerateKeyPartBoundaries(t *testing.T) {
	if GenerateKey("videos", "ab", "c") == GenerateKey("videos", "a", "bc") {
		t.Error("Expected part boundaries to affect the key")
	}
}

func TestGenerateKeyPrefixes(t *testing.T) {
	if GenerateKey("search", "x") == GenerateKey("videos", "x") {
		t.Error("Expected different prefixes to produce different keys")
	}
}
