package auth

import (
	"errors"
	"strings"
	"testing"
)

// Cheap parameters so the suite stays fast; production cost comes from config.
var testScryptParams = ScryptParams{N: 1024, R: 8, P: 1}

func TestHasher_HashVerifyRoundtrip(t *testing.T) {
	h := NewHasher(testScryptParams)

	passwords := []string{
		"password123",
		"",
		"correct horse battery staple",
		"päss wörd with ünicode",
	}

	for _, password := range passwords {
		t.Run(password, func(t *testing.T) {
			stored, err := h.Hash(password)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}

			ok, err := h.Verify(password, stored)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if !ok {
				t.Error("Verify() = false for the password that was hashed")
			}

			ok, err = h.Verify(password+"x", stored)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if ok {
				t.Error("Verify() = true for a different password")
			}
		})
	}
}

func TestHasher_EncodingShape(t *testing.T) {
	h := NewHasher(testScryptParams)

	stored, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	parts := strings.Split(stored, ".")
	if len(parts) != 2 {
		t.Fatalf("encoded credential has %d fields, want 2", len(parts))
	}
	// 64-byte key and 16-byte salt, hex encoded.
	if len(parts[0]) != keyLength*2 {
		t.Errorf("derived key field length = %d, want %d", len(parts[0]), keyLength*2)
	}
	if len(parts[1]) != saltLength*2 {
		t.Errorf("salt field length = %d, want %d", len(parts[1]), saltLength*2)
	}
}

func TestHasher_SaltUniqueness(t *testing.T) {
	h := NewHasher(testScryptParams)

	first, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password are identical; salt is being reused")
	}

	for _, stored := range []string{first, second} {
		ok, err := h.Verify("password123", stored)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if !ok {
			t.Error("Verify() = false against an independently salted hash")
		}
	}
}

func TestHasher_MalformedCredential(t *testing.T) {
	h := NewHasher(testScryptParams)

	valid, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	key := strings.Split(valid, ".")[0]
	salt := strings.Split(valid, ".")[1]

	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"no separator", key + salt},
		{"too many fields", key + "." + salt + "." + salt},
		{"non-hex key", "zz" + key[2:] + "." + salt},
		{"non-hex salt", key + "." + "zz" + salt[2:]},
		{"truncated key", key[:10] + "." + salt},
		{"truncated salt", key + "." + salt[:8]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Verify("password123", tt.stored)
			if !errors.Is(err, ErrMalformedCredential) {
				t.Errorf("Verify() error = %v, want ErrMalformedCredential", err)
			}
		})
	}
}

func TestHasher_WellFormedWrongPasswordIsNotAnError(t *testing.T) {
	h := NewHasher(testScryptParams)

	stored, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := h.Verify("not-the-password", stored)
	if err != nil {
		t.Errorf("Verify() error = %v, want nil for a well-formed mismatch", err)
	}
	if ok {
		t.Error("Verify() = true for the wrong password")
	}
}

func TestNewHasher_ZeroParamsFallBackToDefaults(t *testing.T) {
	h := NewHasher(ScryptParams{})
	if h.params != DefaultScryptParams {
		t.Errorf("params = %+v, want defaults %+v", h.params, DefaultScryptParams)
	}
}
