package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	saltLen          = 16
	keyLen           = 32
)

// HashPassword derives a PBKDF2-SHA256 key from plain with a random salt and
// returns it encoded as hex(salt):hex(key).
func HashPassword(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(plain), salt, pbkdf2Iterations, keyLen, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword reports whether plain matches an encoded value produced by
// HashPassword.  Malformed encodings never match.
func VerifyPassword(encoded, plain string) bool {
	saltHex, keyHex, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(plain), salt, pbkdf2Iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
