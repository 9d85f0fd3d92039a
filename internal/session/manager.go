package session

import (
	"context"
	"sync"

	"github.com/ghaggin/randomtables/internal/backend"
	"github.com/ghaggin/randomtables/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Backend is the subset of the account service the manager needs.
type Backend interface {
	Login(ctx context.Context, creds model.Credentials) (*model.Identity, error)
	Logout(ctx context.Context) error
	Whois(ctx context.Context) (*model.Identity, error)
	ChangePassword(ctx context.Context, password string) error
	ChangeUsername(ctx context.Context, username string) (*model.Identity, error)
}

// CookieSource observes the session cookie without owning it.
type CookieSource interface {
	HasSessionCookie() bool
}

// Manager is the single source of truth for who is logged in.
//
// Login, logout and a vanished cookie bump the generation when they are
// issued, and their confirmed results always apply. A whois or rename only
// applies if the generation is unchanged since it started, so a slow check
// cannot resurrect a user after a logout or undo a login.
type Manager struct {
	backend Backend
	cookies CookieSource
	log     *zap.Logger

	mu        sync.Mutex
	state     model.State
	user      *model.Identity
	hasCookie bool
	observed  bool
	gen       uint64

	subMu   sync.Mutex
	subs    map[int]func(model.Session)
	nextSub int
}

type Params struct {
	fx.In

	Backend *backend.Client
	Log     *zap.Logger
}

func New(p Params) *Manager {
	return NewManager(p.Backend, p.Backend, p.Log)
}

func NewManager(b Backend, cookies CookieSource, log *zap.Logger) *Manager {
	return &Manager{
		backend: b,
		cookies: cookies,
		log:     log,
		state:   model.Unknown,
		subs:    make(map[int]func(model.Session)),
	}
}

// Session returns the current snapshot.
func (m *Manager) Session() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to be called with every new snapshot. The returned
// func removes it.
func (m *Manager) Subscribe(fn func(model.Session)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) Login(ctx context.Context, username, password string) (*model.Identity, error) {
	m.bump()

	id, err := m.backend.Login(ctx, model.Credentials{Username: username, Password: password})
	if err != nil {
		m.log.Debug("login rejected", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	m.set(model.Authenticated, id)
	return copyIdentity(id), nil
}

// Logout clears the user once the backend confirms. A 401/403 means the
// server holds no session either, so it counts as confirmation.
func (m *Manager) Logout(ctx context.Context) error {
	m.bump()

	err := m.backend.Logout(ctx)
	if err != nil && !backend.IsUnauthenticated(err) {
		return err
	}

	m.set(model.Anonymous, nil)
	return nil
}

// Whois asks the backend who owns the current cookie. Any failure leaves the
// manager Anonymous.
func (m *Manager) Whois(ctx context.Context) (*model.Identity, error) {
	gen := m.generation()

	id, err := m.backend.Whois(ctx)
	if err != nil {
		m.applyIf(gen, model.Anonymous, nil)
		return nil, err
	}

	m.applyIf(gen, model.Authenticated, id)
	return copyIdentity(id), nil
}

// ChangePassword never touches the session state.
func (m *Manager) ChangePassword(ctx context.Context, password string) error {
	return m.backend.ChangePassword(ctx, password)
}

// ChangeUsername replaces the current user with the renamed identity.
func (m *Manager) ChangeUsername(ctx context.Context, username string) (*model.Identity, error) {
	gen := m.generation()

	id, err := m.backend.ChangeUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	m.renameIf(gen, id)
	return copyIdentity(id), nil
}

// ObserveCookie samples the session cookie. A cookie that shows up while
// nobody is authenticated triggers a whois; a cookie that disappears while
// authenticated drops the user.
func (m *Manager) ObserveCookie(ctx context.Context) {
	present := m.cookies.HasSessionCookie()

	m.mu.Lock()
	appeared := present && (!m.hasCookie || !m.observed)
	vanished := !present && m.hasCookie
	changed := present != m.hasCookie
	m.hasCookie = present
	m.observed = true
	state := m.state

	var snap model.Session
	expire := vanished && state == model.Authenticated
	if expire {
		m.gen++
		m.state = model.Anonymous
		m.user = nil
	}
	if changed || expire {
		snap = m.snapshotLocked()
	}
	m.mu.Unlock()

	if changed || expire {
		m.notify(snap)
	}
	if expire {
		m.log.Info("session cookie gone, user cleared")
		return
	}

	if appeared && state != model.Authenticated {
		if _, err := m.Whois(ctx); err != nil {
			m.log.Warn("whois after cookie change failed", zap.Error(err))
		}
	}
}

func (m *Manager) bump() {
	m.mu.Lock()
	m.gen++
	m.mu.Unlock()
}

func (m *Manager) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// set applies a confirmed login or logout.
func (m *Manager) set(state model.State, user *model.Identity) {
	m.mu.Lock()
	snap := m.setLocked(state, user)
	m.mu.Unlock()

	m.notify(snap)
}

// applyIf applies a whois result unless a login, logout or cookie loss was
// issued since gen was read.
func (m *Manager) applyIf(gen uint64, state model.State, user *model.Identity) {
	m.mu.Lock()
	if gen != m.gen {
		current := m.gen
		m.mu.Unlock()
		m.log.Debug("dropping stale session update", zap.Uint64("gen", gen), zap.Uint64("current", current))
		return
	}
	snap := m.setLocked(state, user)
	m.mu.Unlock()

	m.notify(snap)
}

// renameIf swaps in the renamed identity while the same user is still
// logged in.
func (m *Manager) renameIf(gen uint64, user *model.Identity) {
	m.mu.Lock()
	if gen != m.gen || m.state != model.Authenticated {
		m.mu.Unlock()
		return
	}
	snap := m.setLocked(model.Authenticated, user)
	m.mu.Unlock()

	m.notify(snap)
}

func (m *Manager) setLocked(state model.State, user *model.Identity) model.Session {
	m.state = state
	m.user = copyIdentity(user)
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() model.Session {
	return model.Session{
		State:            m.state,
		User:             copyIdentity(m.user),
		HasSessionCookie: m.hasCookie,
	}
}

func (m *Manager) notify(s model.Session) {
	m.subMu.Lock()
	fns := make([]func(model.Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func copyIdentity(id *model.Identity) *model.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
