package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 100_000
	SaltLength        = 16
	KeyLength         = 32
)

// hasher derives PBKDF2-SHA256 keys from secrets.
type hasher struct {
	iterations int
}

// hash returns a fresh salt and the derived key, both base64 encoded.
func (h hasher) hash(secret string) (salt, key string, err error) {
	raw := make([]byte, SaltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	derived := derive(secret, raw, h.iterations)
	return encode(raw), encode(derived), nil
}

// verify recomputes the key of secret with a record's salt and iteration
// count and compares it in constant time.
func verify(secret, salt, key string, iterations int) bool {
	rawSalt, err := decode(salt)
	if err != nil {
		return false
	}
	want, err := decode(key)
	if err != nil || len(want) == 0 || iterations <= 0 {
		return false
	}
	got := derive(secret, rawSalt, iterations)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func derive(secret string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(secret), salt, iterations, KeyLength, sha256.New)
}

func encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
