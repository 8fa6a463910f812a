package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ttbackend/apiserver/types"
)

// CredentialRepository reads and writes employee password material.
// Every statement is a single-row point lookup or update.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// FetchCredential looks a credential up by login email.
func (r *CredentialRepository) FetchCredential(ctx context.Context, email string) (types.Credential, error) {
	const query = `
		SELECT employee_id, password, pw_salt
		FROM employee
		WHERE email = $1`
	return r.fetch(ctx, query, email)
}

// FetchCredentialByEmployeeID looks a credential up by employee id.
func (r *CredentialRepository) FetchCredentialByEmployeeID(ctx context.Context, employeeID int) (types.Credential, error) {
	const query = `
		SELECT employee_id, password, pw_salt
		FROM employee
		WHERE employee_id = $1`
	return r.fetch(ctx, query, employeeID)
}

func (r *CredentialRepository) fetch(ctx context.Context, query string, arg any) (types.Credential, error) {
	var (
		credential types.Credential
		salt       sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&credential.EmployeeID,
		&credential.PasswordHash,
		&salt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Credential{}, ErrNotFound
		}
		return types.Credential{}, fmt.Errorf("fetch credential: %w", err)
	}
	if salt.Valid {
		credential.Salt = &salt.String
	}
	return credential, nil
}

// StoreHash overwrites the stored password verifier.
func (r *CredentialRepository) StoreHash(ctx context.Context, employeeID int, hash string) error {
	const query = `UPDATE employee SET password = $2 WHERE employee_id = $1`
	return r.exec(ctx, "store hash", query, employeeID, hash)
}

// StoreSalt overwrites the stored salt.
func (r *CredentialRepository) StoreSalt(ctx context.Context, employeeID int, salt string) error {
	const query = `UPDATE employee SET pw_salt = $2 WHERE employee_id = $1`
	return r.exec(ctx, "store salt", query, employeeID, salt)
}

// StoreCredential replaces hash and salt in one statement so no reader ever
// observes a new salt next to an old hash.
func (r *CredentialRepository) StoreCredential(ctx context.Context, employeeID int, hash, salt string) error {
	const query = `UPDATE employee SET password = $2, pw_salt = $3 WHERE employee_id = $1`
	return r.exec(ctx, "store credential", query, employeeID, hash, salt)
}

func (r *CredentialRepository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = requireAffected(result)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return err
}
