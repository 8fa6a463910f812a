package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ttbackend/apiserver/internal/auth"
	"github.com/ttbackend/apiserver/internal/logging"
	"github.com/ttbackend/apiserver/internal/mq"
	"github.com/ttbackend/apiserver/internal/security"
	"github.com/ttbackend/apiserver/internal/store"
	"github.com/ttbackend/apiserver/internal/throttle"
)

// decoySalt keeps the cost of a login for an unknown email equal to one for
// a known, salted employee.
var decoySalt = strings.Repeat("0", 64)

// AuthService implements login and refresh.
type AuthService struct {
	repo    CredentialRepository
	hasher  *security.Hasher
	tokens  *auth.Tokens
	limiter throttle.Limiter
	events  SecurityEvents
	logger  *logging.Logger
}

// NewAuthService constructs an AuthService. limiter and events are optional;
// pass nil to disable the login throttle or event publishing.
func NewAuthService(
	repo CredentialRepository,
	hasher *security.Hasher,
	tokens *auth.Tokens,
	limiter throttle.Limiter,
	events SecurityEvents,
	logger *logging.Logger,
) *AuthService {
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		limiter: limiter,
		events:  events,
		logger:  logger.With("component", "auth"),
	}
}

// Login checks email and password and mints an access/refresh pair.
//
// Unknown emails and wrong passwords both yield KindInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return auth.TokenPair{}, auth.ErrMissingCredentials
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
		case !allowed:
			return auth.TokenPair{}, auth.ErrThrottled
		}
	}

	credential, err := s.repo.FetchCredential(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_, _ = s.hasher.Verifier(password, &decoySalt)
			publishEvent(ctx, s.events, s.logger, mq.EventLoginFailed, 0)
			return auth.TokenPair{}, auth.Wrap(auth.KindInvalidCredentials, err)
		}
		s.logger.ErrorContext(ctx, "fetching credential failed", "error", err)
		return auth.TokenPair{}, auth.Wrap(auth.KindStorage, err)
	}

	ok, err := s.hasher.Matches(credential.PasswordHash, password, credential.Salt)
	if err != nil {
		s.logger.ErrorContext(ctx, "computing verifier failed", "employee_id", credential.EmployeeID, "error", err)
		return auth.TokenPair{}, auth.Wrap(auth.KindStorage, err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "login rejected", "employee_id", credential.EmployeeID)
		publishEvent(ctx, s.events, s.logger, mq.EventLoginFailed, credential.EmployeeID)
		return auth.TokenPair{}, auth.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(auth.Subject(credential.EmployeeID))
	if err != nil {
		s.logger.ErrorContext(ctx, "token creation failed", "employee_id", credential.EmployeeID, "error", err)
		return auth.TokenPair{}, auth.Wrap(auth.KindTokenCreation, err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.WarnContext(ctx, "login throttle reset failed", "error", err)
		}
	}
	s.logger.InfoContext(ctx, "login succeeded", "employee_id", credential.EmployeeID)
	publishEvent(ctx, s.events, s.logger, mq.EventLoginSucceeded, credential.EmployeeID)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is handed back unchanged and stays usable until it
// expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return auth.TokenPair{}, auth.ErrMissingCredentials
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, auth.Wrap(auth.KindInvalidCredentials, err)
	}
	employeeID, err := claims.EmployeeID()
	if err != nil {
		return auth.TokenPair{}, auth.Wrap(auth.KindInvalidCredentials, err)
	}

	access, err := s.tokens.IssueAccess(claims.Subject)
	if err != nil {
		s.logger.ErrorContext(ctx, "token creation failed", "employee_id", employeeID, "error", err)
		return auth.TokenPair{}, auth.Wrap(auth.KindTokenCreation, err)
	}

	publishEvent(ctx, s.events, s.logger, mq.EventTokenRefreshed, employeeID)
	return auth.TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}
