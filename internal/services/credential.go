package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ttbackend/apiserver/internal/auth"
	"github.com/ttbackend/apiserver/internal/logging"
	"github.com/ttbackend/apiserver/internal/mq"
	"github.com/ttbackend/apiserver/internal/security"
	"github.com/ttbackend/apiserver/internal/store"
	"github.com/ttbackend/apiserver/types"
)

// CredentialRepository defines persistence operations for password material.
type CredentialRepository interface {
	FetchCredential(ctx context.Context, email string) (types.Credential, error)
	FetchCredentialByEmployeeID(ctx context.Context, employeeID int) (types.Credential, error)
	StoreHash(ctx context.Context, employeeID int, hash string) error
	StoreSalt(ctx context.Context, employeeID int, salt string) error
	StoreCredential(ctx context.Context, employeeID int, hash, salt string) error
}

// SecurityEvents receives notable credential events. Delivery is best effort.
type SecurityEvents interface {
	Publish(ctx context.Context, eventType mq.EventType, employeeID int) error
}

// CredentialService manages the salt lifecycle and password changes.
type CredentialService struct {
	repo       CredentialRepository
	hasher     *security.Hasher
	saltLength int
	events     SecurityEvents
	logger     *logging.Logger
}

func NewCredentialService(
	repo CredentialRepository,
	hasher *security.Hasher,
	saltLength int,
	events SecurityEvents,
	logger *logging.Logger,
) *CredentialService {
	return &CredentialService{
		repo:       repo,
		hasher:     hasher,
		saltLength: saltLength,
		events:     events,
		logger:     logger.With("component", "credentials"),
	}
}

// RotateSalt stores a fresh random salt of the given length, replacing any
// previous one.
func (s *CredentialService) RotateSalt(ctx context.Context, employeeID, length int) error {
	salt, err := security.GenerateSalt(length)
	if err != nil {
		return fmt.Errorf("rotate salt: %w", err)
	}
	if err := s.repo.StoreSalt(ctx, employeeID, salt); err != nil {
		return fmt.Errorf("rotate salt: %w", err)
	}
	return nil
}

// IsFirstLogin reports whether the employee has no salt on record.
func (s *CredentialService) IsFirstLogin(ctx context.Context, employeeID int) (bool, error) {
	credential, err := s.repo.FetchCredentialByEmployeeID(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return !credential.HasSalt(), nil
}

// ChangePassword salts and hashes newPassword and stores hash and salt in
// a single write.
func (s *CredentialService) ChangePassword(ctx context.Context, employeeID int, newPassword string) error {
	if newPassword == "" {
		return auth.ErrMissingCredentials
	}

	salt, err := security.GenerateSalt(s.saltLength)
	if err != nil {
		return auth.Wrap(auth.KindStorage, err)
	}
	hash, err := s.hasher.Verifier(newPassword, &salt)
	if err != nil {
		return auth.Wrap(auth.KindStorage, err)
	}

	if err := s.repo.StoreCredential(ctx, employeeID, hash, salt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return auth.Wrap(auth.KindInvalidCredentials, err)
		}
		s.logger.ErrorContext(ctx, "storing credential failed", "employee_id", employeeID, "error", err)
		return auth.Wrap(auth.KindStorage, err)
	}

	s.logger.InfoContext(ctx, "password changed", "employee_id", employeeID)
	publishEvent(ctx, s.events, s.logger, mq.EventPasswordChanged, employeeID)
	return nil
}

func publishEvent(ctx context.Context, events SecurityEvents, logger *logging.Logger, eventType mq.EventType, employeeID int) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, eventType, employeeID); err != nil {
		logger.WarnContext(ctx, "security event not published", "event", eventType, "error", err)
	}
}
