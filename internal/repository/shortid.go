package repository

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	shortIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	shortIDLength   = 6

	// maxIDAttempts bounds the collision retry loop. With 32^6 possible ids
	// it is only reached when the generator itself is broken.
	maxIDAttempts = 10000
)

// ErrIDExhausted is returned when no unused id could be generated.
var ErrIDExhausted = errors.New("could not generate a unique id")

// NewShortID returns a random 6 character id drawn from an alphabet without
// the look-alike characters 0, O, 1 and I.
func NewShortID() (string, error) {
	max := big.NewInt(int64(len(shortIDAlphabet)))
	b := make([]byte, shortIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = shortIDAlphabet[n.Int64()]
	}
	return string(b), nil
}

// GenerateUniqueID calls gen until it yields an id for which exists reports
// false.
func GenerateUniqueID(exists func(string) bool, gen func() (string, error)) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := gen()
		if err != nil {
			return "", err
		}
		if !exists(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
