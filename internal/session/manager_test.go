package session_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"free-chat-client/internal/domain"
	"free-chat-client/internal/session"
)

type fakeTransport struct {
	mu sync.Mutex

	loginToken string
	loginErr   error
	identity   *domain.Identity
	meErr      error

	loginCalls int
	meCalls    int
}

func (f *fakeTransport) Login(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.loginToken, nil
}

func (f *fakeTransport) Me(_ context.Context, _ string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.identity, nil
}

func (f *fakeTransport) Messages(_ context.Context, _ string) ([]domain.Message, error) {
	return nil, nil
}

func (f *fakeTransport) PostMessage(_ context.Context, _, _, _ string) (*domain.Message, error) {
	return nil, nil
}

func (f *fakeTransport) setMeErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meErr = err
}

func (f *fakeTransport) setLoginErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginErr = err
}

func newManager(t *testing.T, transport domain.Transport) (*session.Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token.json")
	return session.NewManager(transport, session.NewTokenStore(path), zap.NewNop()), path
}

func TestLoginPersistsTokenAndSession(t *testing.T) {
	transport := &fakeTransport{
		loginToken: "tok-1",
		identity:   &domain.Identity{Username: "alice", DisplayName: "Alice"},
	}
	m, path := newManager(t, transport)

	sess, err := m.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "alice", sess.User.Username)
	assert.True(t, sess.Valid)
	assert.Equal(t, "tok-1", m.Token())

	_, err = os.Stat(path)
	require.NoError(t, err, "token must be persisted")

	stored, err := session.NewTokenStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored)
}

func TestLoginFailureLeavesPriorSessionIntact(t *testing.T) {
	transport := &fakeTransport{
		loginToken: "tok-1",
		identity:   &domain.Identity{Username: "alice"},
	}
	m, _ := newManager(t, transport)

	_, err := m.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	transport.setLoginErr(domain.ErrInvalidCredentials)
	_, err = m.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, domain.IsAuth(err))

	// Prior session is untouched.
	assert.Equal(t, "tok-1", m.Token())
	require.NotNil(t, m.Session())
}

func TestValidateResumesPersistedSession(t *testing.T) {
	transport := &fakeTransport{
		loginToken: "tok-1",
		identity:   &domain.Identity{Username: "alice"},
	}
	path := filepath.Join(t.TempDir(), "token.json")

	first := session.NewManager(transport, session.NewTokenStore(path), zap.NewNop())
	_, err := first.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	// "Process restart": a fresh manager over the same token file.
	second := session.NewManager(transport, session.NewTokenStore(path), zap.NewNop())
	identity, err := second.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "tok-1", second.Token())
	assert.Equal(t, 1, transport.loginCalls, "must not re-prompt credentials")
}

func TestLogoutThenValidateFails(t *testing.T) {
	transport := &fakeTransport{
		loginToken: "tok-1",
		identity:   &domain.Identity{Username: "alice"},
	}
	m, path := newManager(t, transport)

	_, err := m.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	m.Logout()
	assert.Empty(t, m.Token())
	assert.Nil(t, m.Session())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "token file must be cleared")

	_, err = m.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsAuth(err))
}

func TestValidateRejectedTokenClearsState(t *testing.T) {
	transport := &fakeTransport{
		loginToken: "tok-1",
		identity:   &domain.Identity{Username: "alice"},
	}
	m, path := newManager(t, transport)

	_, err := m.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	transport.setMeErr(domain.ErrTokenRejected)
	_, err = m.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsAuth(err))

	assert.Empty(t, m.Token())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "rejected token must not linger")
}

func TestValidateTransientErrorKeepsToken(t *testing.T) {
	transport := &fakeTransport{
		loginToken: "tok-1",
		identity:   &domain.Identity{Username: "alice"},
	}
	m, path := newManager(t, transport)

	_, err := m.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	transport.setMeErr(domain.NewTransportError("me", context.DeadlineExceeded))
	_, err = m.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))

	// A network blip must not destroy the credential.
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestLogoutSignalsDependentsOnce(t *testing.T) {
	transport := &fakeTransport{
		loginToken: "tok-1",
		identity:   &domain.Identity{Username: "alice"},
	}
	m, _ := newManager(t, transport)

	calls := 0
	m.OnLogout(func() { calls++ })

	// No active session: no-op, no signal.
	m.Logout()
	assert.Equal(t, 0, calls)

	_, err := m.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	m.Logout()
	m.Logout()
	assert.Equal(t, 1, calls)
}
