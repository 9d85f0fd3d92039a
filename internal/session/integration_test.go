package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghaggin/randomtables/internal/backend"
	"github.com/ghaggin/randomtables/internal/config"
	"github.com/ghaggin/randomtables/internal/model"
	"github.com/ghaggin/randomtables/internal/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStubManager(t *testing.T) (*Manager, *backend.Client) {
	t.Helper()

	cfg := config.Default()
	h, err := stub.NewHandler(cfg, zap.NewNop())
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	cfg.Backend.URL = ts.URL
	c, err := backend.New(backend.Params{Config: cfg, Log: zap.NewNop()})
	require.NoError(t, err)

	require.NoError(t, c.CreateAccount(context.Background(), model.Credentials{Username: "alice", Password: "secret123"}))
	return New(Params{Backend: c, Log: zap.NewNop()}), c
}

func TestIntegration_LoginLogoutAgainstStub(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	m, c := newStubManager(t)

	_, err := m.Login(ctx, "alice", "wrong-password")
	require.Error(err)
	assert.Equal(http.StatusUnauthorized, backend.StatusOf(err))
	assert.Equal(model.Unknown, m.Session().State)

	id, err := m.Login(ctx, "alice", "secret123")
	require.NoError(err)
	assert.Equal("alice", id.Username)
	assert.True(c.HasSessionCookie())

	m.ObserveCookie(ctx)
	assert.True(m.Session().HasSessionCookie)
	assert.Equal(model.Authenticated, m.Session().State)

	who, err := m.Whois(ctx)
	require.NoError(err)
	assert.Equal(*id, *who)

	require.NoError(m.Logout(ctx))
	assert.Nil(m.Session().User)
	require.NoError(m.Logout(ctx))
	assert.Nil(m.Session().User)
	assert.False(c.HasSessionCookie())

	_, err = m.Whois(ctx)
	assert.True(backend.IsUnauthenticated(err))
	assert.Equal(model.Anonymous, m.Session().State)
}

// A second client logging in shares nothing with the first; only cookies
// from the same jar are observed.
func TestIntegration_CookieFromAnotherClientIsInvisible(t *testing.T) {
	ctx := context.Background()
	m, _ := newStubManager(t)

	m.ObserveCookie(ctx)
	assert.False(t, m.Session().HasSessionCookie)
	assert.Equal(t, model.Unknown, m.Session().State)
}
