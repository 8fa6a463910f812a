// Package auth issues and verifies bearer tokens, defines the error taxonomy
// of the credential subsystem and carries the authenticated employee through
// request contexts.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenRejected is the single outcome of a failed verification. Bad
// signatures, malformed tokens and expired tokens are indistinguishable.
var ErrTokenRejected = errors.New("token rejected")

// TokenType separates access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims is the signed payload of access and refresh tokens.
type Claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Tokens signs and verifies HS256 tokens with one process-wide key.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens constructs a Tokens with the given key and lifetimes.
func NewTokens(secret string, accessTTL, refreshTTL time.Duration) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing key is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &Tokens{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue signs a token of the given type for subject that expires validity
// from now.
func (t *Tokens) Issue(subject string, tokenType TokenType, validity time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// IssuePair mints an access and a refresh token for subject.
func (t *Tokens) IssuePair(subject string) (TokenPair, error) {
	access, err := t.Issue(subject, TokenAccess, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.Issue(subject, TokenRefresh, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess mints an access token only.
func (t *Tokens) IssueAccess(subject string) (string, error) {
	return t.Issue(subject, TokenAccess, t.accessTTL)
}

// VerifyAccess accepts access tokens only.
func (t *Tokens) VerifyAccess(tokenString string) (*Claims, error) {
	return t.verifyType(tokenString, TokenAccess)
}

// VerifyRefresh accepts refresh tokens only.
func (t *Tokens) VerifyRefresh(tokenString string) (*Claims, error) {
	return t.verifyType(tokenString, TokenRefresh)
}

func (t *Tokens) verifyType(tokenString string, want TokenType) (*Claims, error) {
	claims, err := t.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, ErrTokenRejected
	}
	return claims, nil
}

// Verify checks the signature, then the expiry, and returns the claims of a
// token of either type. Every failure is reported as ErrTokenRejected.
func (t *Tokens) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrTokenRejected
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenRejected
	}
	return claims, nil
}
