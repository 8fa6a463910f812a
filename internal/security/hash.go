// Package security derives and compares password verifiers and generates
// salts for the credential subsystem.
package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ttbackend/apiserver/config"
	"golang.org/x/crypto/argon2"
)

const (
	argonThreads = 1
	argonKeyLen  = 32
)

// ErrInvalidIterations is returned when the configured work factor is below one.
var ErrInvalidIterations = errors.New("iterations must be at least 1")

// ComputeVerifier derives the stored form of a password.
//
// A nil salt means the employee never set a password, so the plaintext is
// returned as is and compared against the provisioning password. Otherwise
// plaintext, salt and pepper are concatenated in that order and digested with
// SHA-256 iterations times, each round hashing the raw bytes of the previous
// digest. The result is lowercase hex.
func ComputeVerifier(plaintext string, salt *string, pepper string, iterations int) (string, error) {
	if iterations < 1 {
		return "", ErrInvalidIterations
	}
	if salt == nil {
		return plaintext, nil
	}

	sum := sha256.Sum256([]byte(plaintext + *salt + pepper))
	for i := 1; i < iterations; i++ {
		sum = sha256.Sum256(sum[:])
	}
	return hex.EncodeToString(sum[:]), nil
}

// computeArgon2Verifier keeps the ComputeVerifier contract on top of Argon2id.
func computeArgon2Verifier(plaintext string, salt *string, pepper string, time, memoryKiB int) (string, error) {
	if time < 1 {
		return "", ErrInvalidIterations
	}
	if salt == nil {
		return plaintext, nil
	}

	key := argon2.IDKey([]byte(plaintext+pepper), []byte(*salt), uint32(time), uint32(memoryKiB), argonThreads, argonKeyLen) //nolint:gosec // bounded by config validation
	return hex.EncodeToString(key), nil
}

// Equal compares a stored verifier with a candidate in constant time.
func Equal(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Hasher binds the process-wide pepper and work factor to the verifier
// construction selected at startup. It is immutable and safe for concurrent use.
type Hasher struct {
	pepper     string
	algorithm  string
	iterations int
	memoryKiB  int
}

// NewHasher builds a Hasher from the security configuration.
func NewHasher(cfg config.SecurityConfig) (*Hasher, error) {
	h := &Hasher{
		pepper:     cfg.Pepper,
		algorithm:  cfg.PasswordKDF,
		iterations: cfg.KeychainNumber,
	}
	switch cfg.PasswordKDF {
	case config.KDFSHA256Chain, "":
		h.algorithm = config.KDFSHA256Chain
	case config.KDFArgon2id:
		h.iterations = cfg.Argon2Time
		h.memoryKiB = cfg.Argon2MemoryKiB
	default:
		return nil, fmt.Errorf("unsupported password kdf %q", cfg.PasswordKDF)
	}
	if h.iterations < 1 {
		return nil, ErrInvalidIterations
	}
	return h, nil
}

// Verifier derives the stored form of plaintext for the given salt.
func (h *Hasher) Verifier(plaintext string, salt *string) (string, error) {
	if h.algorithm == config.KDFArgon2id {
		return computeArgon2Verifier(plaintext, salt, h.pepper, h.iterations, h.memoryKiB)
	}
	return ComputeVerifier(plaintext, salt, h.pepper, h.iterations)
}

// Matches reports whether plaintext reproduces the stored verifier.
func (h *Hasher) Matches(stored, plaintext string, salt *string) (bool, error) {
	candidate, err := h.Verifier(plaintext, salt)
	if err != nil {
		return false, err
	}
	return Equal(stored, candidate), nil
}
