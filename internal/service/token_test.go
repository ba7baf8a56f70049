package service

import (
	"encoding/hex"
	"testing"
)

// =============================================================================
// Service Token Tests
// =============================================================================

func TestGenerateToken_FormatAndEntropy(t *testing.T) {
	token, err := generateToken()
	if err != nil {
		t.Fatalf("generateToken() error = %v", err)
	}

	if len(token) != ServiceTokenBytes*2 {
		t.Errorf("token length = %d, want %d hex chars", len(token), ServiceTokenBytes*2)
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("token is not valid hex: %v", err)
	}

	other, err := generateToken()
	if err != nil {
		t.Fatalf("generateToken() error = %v", err)
	}
	if token == other {
		t.Error("two generated tokens are identical")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	token := "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899"

	first := hashToken(token)
	second := hashToken(token)

	if first != second {
		t.Error("hashing the same token twice gave different results")
	}
	if first == token {
		t.Error("hash must differ from the raw token")
	}
	if len(first) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(first))
	}
}

func TestHashToken_DistinctInputs(t *testing.T) {
	a := hashToken("token-a")
	b := hashToken("token-b")

	if a == b {
		t.Error("different tokens hashed to the same value")
	}
}

func TestTokenPrefix(t *testing.T) {
	testCases := []struct {
		name  string
		token string
		want  string
	}{
		{"full length token", "0123456789abcdef0123", "01234567"},
		{"exact prefix length", "01234567", "01234567"},
		{"shorter than prefix", "0123", "0123"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tokenPrefix(tc.token); got != tc.want {
				t.Errorf("tokenPrefix(%q) = %q, want %q", tc.token, got, tc.want)
			}
		})
	}
}
