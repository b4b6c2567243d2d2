// Package token generates and verifies host access tokens. Tokens are
// 32 bytes of crypto-random data, base64url-encoded for display, and stored
// only as bcrypt hashes.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 32

// Pair holds a freshly generated access token: the plaintext shown to the
// host exactly once, and the hash that goes to storage.
type Pair struct {
	Plain string
	Hash  string
}

// Generate creates a new access token pair.
func Generate() (*Pair, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	plain := base64.RawURLEncoding.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash access token: %w", err)
	}

	return &Pair{Plain: plain, Hash: string(hash)}, nil
}

// Verify reports whether the supplied token matches the stored hash.
// bcrypt's comparison does not leak timing information about the token.
func Verify(supplied, storedHash string) bool {
	if supplied == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(supplied)) == nil
}
