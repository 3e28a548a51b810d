package utils

import (
	"encoding/base64"
	"testing"
)

func TestGenerateLinkToken(t *testing.T) {
	token, err := GenerateLinkToken()
	if err != nil {
		t.Fatalf("GenerateLinkToken() error: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not valid URL-safe base64: %v", err)
	}
	if len(raw) != linkTokenBytes {
		t.Errorf("token carries %d bytes of entropy, want %d", len(raw), linkTokenBytes)
	}
}

func TestGenerateLinkTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := GenerateLinkToken()
		if err != nil {
			t.Fatalf("GenerateLinkToken() error: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}
