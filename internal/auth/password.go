package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	// saltLength is the random salt size in bytes. A fresh salt is drawn on
	// every Hash call so equal passwords never produce linkable hashes.
	saltLength = 16

	// keyLength is the derived key size in bytes. Fixed so the encoded
	// credential parses unambiguously.
	keyLength = 64
)

// ScryptParams holds the KDF cost parameters. Raising N is the primary knob
// against offline brute force.
type ScryptParams struct {
	N int // CPU/memory cost, power of two
	R int // block size
	P int // parallelism
}

// DefaultScryptParams are interactive-login parameters (~100ms per derivation
// on current hardware).
var DefaultScryptParams = ScryptParams{N: 32768, R: 8, P: 1}

// Hasher derives and verifies password credentials. It is stateless apart
// from a cap on concurrent derivations: scrypt is deliberately expensive, and
// unbounded parallel derivations under a login burst would starve unrelated
// request handlers.
type Hasher struct {
	params ScryptParams
	sem    chan struct{}
}

// NewHasher creates a Hasher. Zero-valued params fall back to
// DefaultScryptParams field by field.
func NewHasher(params ScryptParams) *Hasher {
	if params.N <= 1 {
		params.N = DefaultScryptParams.N
	}
	if params.R <= 0 {
		params.R = DefaultScryptParams.R
	}
	if params.P <= 0 {
		params.P = DefaultScryptParams.P
	}
	return &Hasher{
		params: params,
		sem:    make(chan struct{}, runtime.GOMAXPROCS(0)),
	}
}

// Hash derives a credential from the password under a fresh random salt and
// returns it encoded as "<derived-key-hex>.<salt-hex>".
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := h.derive([]byte(password), salt)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// Verify re-derives a key from the password and the stored salt and compares
// it against the stored key in constant time. A well-formed credential that
// does not match yields (false, nil); only an unparseable credential yields
// an error (wrapping ErrMalformedCredential).
func (h *Hasher) Verify(password, stored string) (bool, error) {
	storedKey, salt, err := decodeCredential(stored)
	if err != nil {
		return false, err
	}

	key, err := h.derive([]byte(password), salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(storedKey, key) == 1, nil
}

func (h *Hasher) derive(password, salt []byte) ([]byte, error) {
	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	key, err := scrypt.Key(password, salt, h.params.N, h.params.R, h.params.P, keyLength)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	return key, nil
}

func decodeCredential(stored string) (key, salt []byte, err error) {
	parts := strings.Split(stored, ".")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("%w: expected two fields, got %d", ErrMalformedCredential, len(parts))
	}

	key, err = hex.DecodeString(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: derived key is not hex", ErrMalformedCredential)
	}
	salt, err = hex.DecodeString(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: salt is not hex", ErrMalformedCredential)
	}

	if len(key) != keyLength || len(salt) != saltLength {
		return nil, nil, fmt.Errorf("%w: unexpected field lengths %d/%d", ErrMalformedCredential, len(key), len(salt))
	}
	return key, salt, nil
}
