package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/randomtables/internal/config"
)

const (
	accountKey = "account_id"
)

var (
	errSessionNotFound = errors.New("session not found")
)

// SessionManager issues the session cookie for the stub backend.
type SessionManager struct {
	impl *scs.SessionManager
}

func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	sm := &SessionManager{}
	sm.impl = scs.New()
	sm.impl.Cookie.Name = cfg.Session.CookieName
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode
	if cfg.Stub.Lifetime > 0 {
		sm.impl.Lifetime = cfg.Stub.Lifetime
	}

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

// AccountID returns the account bound to the request's session.
func (s *SessionManager) AccountID(ctx context.Context) (int, error) {
	id, ok := s.impl.Get(ctx, accountKey).(int)
	if !ok {
		return 0, errSessionNotFound
	}

	return id, nil
}

// SetAuthenticated binds the session to id under a fresh token.
func (s *SessionManager) SetAuthenticated(ctx context.Context, id int) error {
	if err := s.impl.RenewToken(ctx); err != nil {
		return err
	}

	s.impl.Put(ctx, accountKey, id)
	return nil
}

// Clear destroys the session; the response expires the cookie.
func (s *SessionManager) Clear(ctx context.Context) error {
	return s.impl.Destroy(ctx)
}

// RequireAccount rejects requests whose session carries no account.
func (s *SessionManager) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.AccountID(r.Context()); err != nil {
			http.Error(w, "No user logged in", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
