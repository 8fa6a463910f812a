package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ttbackend/apiserver/config"
	"github.com/ttbackend/apiserver/internal/auth"
	"github.com/ttbackend/apiserver/internal/mq"
	"github.com/ttbackend/apiserver/internal/security"
	"github.com/ttbackend/apiserver/internal/store"
	"github.com/ttbackend/apiserver/types"
)

var testSecurity = config.SecurityConfig{
	JWTSecret:       "test-secret",
	Pepper:          "pepper",
	KeychainNumber:  361,
	SaltLength:      64,
	PasswordKDF:     config.KDFSHA256Chain,
	AccessTokenTTL:  time.Hour,
	RefreshTokenTTL: 24 * time.Hour,
}

type memoryCredentials struct {
	mu       sync.Mutex
	byEmail  map[string]int
	byID     map[int]types.Credential
	calls    int
	fetchErr error
	storeErr error
}

func newMemoryCredentials() *memoryCredentials {
	return &memoryCredentials{
		byEmail: make(map[string]int),
		byID:    make(map[int]types.Credential),
	}
}

// provision seeds a first-login account whose password column holds plaintext.
func (m *memoryCredentials) provision(id int, email, password string) {
	m.byEmail[email] = id
	m.byID[id] = types.Credential{EmployeeID: id, PasswordHash: password}
}

func (m *memoryCredentials) FetchCredential(_ context.Context, email string) (types.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fetchErr != nil {
		return types.Credential{}, m.fetchErr
	}
	id, ok := m.byEmail[email]
	if !ok {
		return types.Credential{}, store.ErrNotFound
	}
	return m.byID[id], nil
}

func (m *memoryCredentials) FetchCredentialByEmployeeID(_ context.Context, employeeID int) (types.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fetchErr != nil {
		return types.Credential{}, m.fetchErr
	}
	credential, ok := m.byID[employeeID]
	if !ok {
		return types.Credential{}, store.ErrNotFound
	}
	return credential, nil
}

func (m *memoryCredentials) StoreHash(_ context.Context, employeeID int, hash string) error {
	return m.update(employeeID, func(c *types.Credential) { c.PasswordHash = hash })
}

func (m *memoryCredentials) StoreSalt(_ context.Context, employeeID int, salt string) error {
	return m.update(employeeID, func(c *types.Credential) { c.Salt = &salt })
}

func (m *memoryCredentials) StoreCredential(_ context.Context, employeeID int, hash, salt string) error {
	return m.update(employeeID, func(c *types.Credential) {
		c.PasswordHash = hash
		c.Salt = &salt
	})
}

func (m *memoryCredentials) update(employeeID int, fn func(*types.Credential)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.storeErr != nil {
		return m.storeErr
	}
	credential, ok := m.byID[employeeID]
	if !ok {
		return store.ErrNotFound
	}
	fn(&credential)
	m.byID[employeeID] = credential
	return nil
}

func (m *memoryCredentials) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type recordedEvent struct {
	Type       mq.EventType
	EmployeeID int
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (r *eventRecorder) Publish(_ context.Context, eventType mq.EventType, employeeID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, EmployeeID: employeeID})
	return r.err
}

func (r *eventRecorder) recorded() []mq.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mq.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type stubLimiter struct {
	allowed bool
	err     error
	allows  int
	resets  int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) {
	l.allows++
	return l.allowed, l.err
}

func (l *stubLimiter) Reset(context.Context, string) error {
	l.resets++
	return nil
}

func newTestHasher(t *testing.T) *security.Hasher {
	t.Helper()
	hasher, err := security.NewHasher(testSecurity)
	require.NoError(t, err)
	return hasher
}

func newTestTokens(t *testing.T) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens(testSecurity.JWTSecret, testSecurity.AccessTokenTTL, testSecurity.RefreshTokenTTL)
	require.NoError(t, err)
	return tokens
}
