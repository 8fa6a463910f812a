package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrInvalidSaltLength is returned when a salt of fewer than one character is requested.
var ErrInvalidSaltLength = errors.New("salt length must be at least 1")

// GenerateSalt returns length characters drawn uniformly from [A-Za-z0-9]
// using crypto/rand.
func GenerateSalt(length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidSaltLength
	}

	alphabetSize := big.NewInt(int64(len(saltAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = saltAlphabet[n.Int64()]
	}
	return string(buf), nil
}
