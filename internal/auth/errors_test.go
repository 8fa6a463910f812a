package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_MatchesByKind(t *testing.T) {
	t.Parallel()

	err := Wrap(KindInvalidCredentials, errors.New("wrong password"))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrMissingCredentials)

	wrapped := fmt.Errorf("login: %w", err)
	assert.ErrorIs(t, wrapped, ErrInvalidCredentials)
}

func TestErrorUnwrap_KeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := Wrap(KindStorage, cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindMissingCredentials, KindOf(ErrMissingCredentials))
	assert.Equal(t, KindTokenCreation, KindOf(fmt.Errorf("x: %w", Wrap(KindTokenCreation, nil))))
	assert.Equal(t, KindStorage, KindOf(errors.New("unexpected")))
	assert.Equal(t, KindThrottled, KindOf(ErrThrottled))
}
