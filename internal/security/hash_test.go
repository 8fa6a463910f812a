package security

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttbackend/apiserver/config"
)

const testPepper = "pepper"

func strPtr(s string) *string { return &s }

func TestComputeVerifier_FirstLoginPassthrough(t *testing.T) {
	t.Parallel()

	got, err := ComputeVerifier("catgirls123", nil, testPepper, 361)
	require.NoError(t, err)
	assert.Equal(t, "catgirls123", got)
}

func TestComputeVerifier_SingleRound(t *testing.T) {
	t.Parallel()

	got, err := ComputeVerifier("catgirls123", strPtr("salt"), testPepper, 1)
	require.NoError(t, err)

	want := sha256.Sum256([]byte("catgirls123" + "salt" + testPepper))
	assert.Equal(t, hex.EncodeToString(want[:]), got)
}

func TestComputeVerifier_ChainsRawDigests(t *testing.T) {
	t.Parallel()

	got, err := ComputeVerifier("catgirls123", strPtr("salt"), testPepper, 3)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("catgirls123salt" + testPepper))
	sum = sha256.Sum256(sum[:])
	sum = sha256.Sum256(sum[:])
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestComputeVerifier_LowercaseHex(t *testing.T) {
	t.Parallel()

	got, err := ComputeVerifier("catgirls123", strPtr("salt"), testPepper, 187)
	require.NoError(t, err)
	assert.Len(t, got, 64)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), got)
}

func TestComputeVerifier_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := ComputeVerifier("catgirls123", strPtr("abc"), testPepper, 50)
	require.NoError(t, err)
	second, err := ComputeVerifier("catgirls123", strPtr("abc"), testPepper, 50)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeVerifier_SaltsDifferentiate(t *testing.T) {
	t.Parallel()

	a, err := ComputeVerifier("catgirls123", strPtr("salt-one"), testPepper, 10)
	require.NoError(t, err)
	b, err := ComputeVerifier("catgirls123", strPtr("salt-two"), testPepper, 10)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestComputeVerifier_IterationsDifferentiate(t *testing.T) {
	t.Parallel()

	a, err := ComputeVerifier("catgirls123", strPtr("salt"), testPepper, 361)
	require.NoError(t, err)
	b, err := ComputeVerifier("catgirls123", strPtr("salt"), testPepper, 187)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestComputeVerifier_PepperMatters(t *testing.T) {
	t.Parallel()

	a, err := ComputeVerifier("catgirls123", strPtr("salt"), "pepper-a", 5)
	require.NoError(t, err)
	b, err := ComputeVerifier("catgirls123", strPtr("salt"), "pepper-b", 5)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestComputeVerifier_ZeroIterations(t *testing.T) {
	t.Parallel()

	_, err := ComputeVerifier("catgirls123", strPtr("salt"), testPepper, 0)
	require.ErrorIs(t, err, ErrInvalidIterations)

	_, err = ComputeVerifier("catgirls123", nil, testPepper, 0)
	require.ErrorIs(t, err, ErrInvalidIterations)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, Equal("abc", "abc"))
	assert.False(t, Equal("abc", "abd"))
	assert.False(t, Equal("abc", "abcd"))
}

func TestNewHasher(t *testing.T) {
	t.Parallel()

	_, err := NewHasher(config.SecurityConfig{Pepper: testPepper, KeychainNumber: 0, PasswordKDF: config.KDFSHA256Chain})
	require.ErrorIs(t, err, ErrInvalidIterations)

	_, err = NewHasher(config.SecurityConfig{Pepper: testPepper, KeychainNumber: 3, PasswordKDF: "scrypt"})
	require.Error(t, err)

	h, err := NewHasher(config.SecurityConfig{Pepper: testPepper, KeychainNumber: 3, PasswordKDF: config.KDFSHA256Chain})
	require.NoError(t, err)

	blank, err := NewHasher(config.SecurityConfig{Pepper: testPepper, KeychainNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, config.KDFSHA256Chain, blank.algorithm)

	got, err := h.Verifier("catgirls123", strPtr("salt"))
	require.NoError(t, err)
	want, err := ComputeVerifier("catgirls123", strPtr("salt"), testPepper, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ok, err := h.Matches(want, "catgirls123", strPtr("salt"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Matches(want, "catgirls124", strPtr("salt"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_Argon2id(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(config.SecurityConfig{
		Pepper:          testPepper,
		KeychainNumber:  1,
		PasswordKDF:     config.KDFArgon2id,
		Argon2Time:      1,
		Argon2MemoryKiB: 64,
	})
	require.NoError(t, err)

	passthrough, err := h.Verifier("catgirls123", nil)
	require.NoError(t, err)
	assert.Equal(t, "catgirls123", passthrough)

	a, err := h.Verifier("catgirls123", strPtr("salt-one"))
	require.NoError(t, err)
	again, err := h.Verifier("catgirls123", strPtr("salt-one"))
	require.NoError(t, err)
	b, err := h.Verifier("catgirls123", strPtr("salt-two"))
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
}
