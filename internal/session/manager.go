// Package session owns the authenticated session: the bearer token, its
// durable persistence, and the identity derived from it. Dependents register
// logout hooks instead of watching ambient global state.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"free-chat-client/internal/domain"
)

type Manager struct {
	transport domain.Transport
	tokens    *TokenStore
	logger    *zap.Logger

	mu       sync.RWMutex
	current  *domain.Session
	onLogout []func()
}

func NewManager(transport domain.Transport, tokens *TokenStore, logger *zap.Logger) *Manager {
	return &Manager{
		transport: transport,
		tokens:    tokens,
		logger:    logger.Named("session"),
	}
}

// OnLogout registers a hook invoked whenever the session terminates, either
// through Logout or a token rejection. Hooks run outside the manager lock.
func (m *Manager) OnLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// Login exchanges credentials for a session. Prior session state is left
// untouched on failure.
func (m *Manager) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	token, err := m.transport.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	identity, err := m.transport.Me(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("login: fetch identity: %w", err)
	}

	if err := m.tokens.Save(token); err != nil {
		return nil, fmt.Errorf("login: persist token: %w", err)
	}

	sess := &domain.Session{Token: token, User: *identity, Valid: true}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	m.logger.Info("logged in", zap.String("username", identity.Username))
	return sess, nil
}

// Validate resumes a persisted session on process start. A rejected token
// gets the same cleanup as Logout so the engine never operates on a stale
// credential.
func (m *Manager) Validate(ctx context.Context) (*domain.Identity, error) {
	token := m.Token()
	if token == "" {
		stored, err := m.tokens.Load()
		if err != nil {
			return nil, fmt.Errorf("validate: read token: %w", err)
		}
		token = stored
	}
	if token == "" {
		return nil, domain.ErrNoSession
	}

	identity, err := m.transport.Me(ctx, token)
	if err != nil {
		if domain.IsAuth(err) {
			m.logger.Warn("stored token rejected, clearing session", zap.Error(err))
			m.Logout()
		}
		return nil, fmt.Errorf("validate: %w", err)
	}

	if err := m.tokens.Save(token); err != nil {
		return nil, fmt.Errorf("validate: persist token: %w", err)
	}

	m.mu.Lock()
	m.current = &domain.Session{Token: token, User: *identity, Valid: true}
	m.mu.Unlock()

	m.logger.Info("session resumed", zap.String("username", identity.Username))
	return identity, nil
}

// Logout clears the durable token, invalidates the in-memory session, and
// signals dependents. Idempotent.
func (m *Manager) Logout() {
	m.mu.Lock()
	hadSession := m.current != nil
	if hadSession {
		m.current.Valid = false
	}
	m.current = nil
	hooks := make([]func(), len(m.onLogout))
	copy(hooks, m.onLogout)
	m.mu.Unlock()

	if err := m.tokens.Clear(); err != nil {
		m.logger.Warn("failed to clear token file", zap.Error(err))
	}
	if !hadSession {
		return
	}

	for _, fn := range hooks {
		fn()
	}
	m.logger.Info("logged out")
}

// Session returns the current session, or nil when logged out.
func (m *Manager) Session() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || !m.current.Valid {
		return nil
	}
	s := *m.current
	return &s
}

// Token returns the current bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || !m.current.Valid {
		return ""
	}
	return m.current.Token
}
