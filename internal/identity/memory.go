package identity

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const memorySessionTTL = time.Hour

// Memory is an in-process identity provider for local development and tests.
// Accounts and sessions are lost on restart.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount // by lower-cased email
	sessions map[string]memorySession  // by access token
	cost     int
	now      func() time.Time
}

type memoryAccount struct {
	id           string
	email        string
	passwordHash []byte
}

type memorySession struct {
	account   *memoryAccount
	expiresAt time.Time
}

type MemoryOption func(*Memory)

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) MemoryOption {
	return func(m *Memory) { m.cost = cost }
}

// WithMemoryClock overrides the time source, for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		accounts: make(map[string]*memoryAccount),
		sessions: make(map[string]memorySession),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) SignUp(_ context.Context, email, password string) (*domain.ExternalAccount, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return nil, &domain.ProviderError{Op: "sign_up", StatusCode: http.StatusUnprocessableEntity, Message: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := m.accounts[key]; ok {
		return nil, &domain.ProviderError{Op: "sign_up", StatusCode: http.StatusUnprocessableEntity, Message: "User already registered"}
	}

	acc := &memoryAccount{id: uuid.NewString(), email: email, passwordHash: hash}
	m.accounts[key] = acc
	return m.startSession(acc), nil
}

func (m *Memory) SignInWithPassword(_ context.Context, email, password string) (*domain.ExternalAccount, error) {
	m.mu.Lock()
	acc, ok := m.accounts[strings.ToLower(email)]
	m.mu.Unlock()

	invalid := &domain.ProviderError{Op: "sign_in", StatusCode: http.StatusBadRequest, Message: "Invalid login credentials"}
	if !ok {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil, invalid
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startSession(acc), nil
}

func (m *Memory) SignOut(_ context.Context, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, accessToken)
	return nil
}

func (m *Memory) VerifyToken(_ context.Context, accessToken string) (*domain.ExternalAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[accessToken]
	if !ok || !m.now().Before(s.expiresAt) {
		delete(m.sessions, accessToken)
		return nil, &domain.ProviderError{Op: "verify", StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
	}
	return &domain.ExternalAccount{
		ID:          s.account.id,
		Email:       s.account.email,
		Audience:    "authenticated",
		AccessToken: accessToken,
	}, nil
}

// startSession must be called with m.mu held. Expired sessions are swept
// here so tokens that are never presented again do not pile up.
func (m *Memory) startSession(acc *memoryAccount) *domain.ExternalAccount {
	now := m.now()
	for tok, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			delete(m.sessions, tok)
		}
	}

	tok := uuid.NewString()
	m.sessions[tok] = memorySession{account: acc, expiresAt: now.Add(memorySessionTTL)}
	return &domain.ExternalAccount{
		ID:          acc.id,
		Email:       acc.email,
		Audience:    "authenticated",
		AccessToken: tok,
	}
}
