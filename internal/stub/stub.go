// Package stub is an in-process stand-in for the account service, for
// developing and testing clients without the real backend.
package stub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ghaggin/randomtables/internal/config"
	"github.com/ghaggin/randomtables/internal/form"
	"github.com/ghaggin/randomtables/internal/middleware"
	"github.com/ghaggin/randomtables/internal/model"
	"github.com/ghaggin/randomtables/internal/repository"
	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Backend struct {
	log    *zap.Logger
	server *http.Server
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     *config.Config
	Controller *Controller
	Sessions   *middleware.SessionManager
}

func New(p Params) (*Backend, error) {
	return &Backend{
		log: p.Log,
		server: &http.Server{
			Addr:    fmt.Sprintf("localhost:%d", p.Config.Stub.Port),
			Handler: NewRouter(p.Controller, p.Sessions, p.Log),
		},
	}, nil
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, b *Backend) {
	lc.Append(fx.Hook{
		OnStart: b.Start,
		OnStop:  b.server.Shutdown,
	})
}

func (b *Backend) Start(_ context.Context) error {
	b.log.Info("stub backend listening", zap.String("addr", b.server.Addr))
	go func() {
		err := b.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.log.Error("error starting server", zap.Error(err))
		}
	}()
	return nil
}

// NewHandler wires a backend over an in-memory repository. Hashing uses the
// minimum bcrypt cost.
func NewHandler(cfg *config.Config, log *zap.Logger) (http.Handler, error) {
	sessions, err := middleware.NewSessionManager(cfg)
	if err != nil {
		return nil, err
	}

	ctrl, err := NewController(ControllerParams{Logger: log, Repo: repository.NewMemory(log)})
	if err != nil {
		return nil, err
	}
	ctrl.cost = bcrypt.MinCost

	return NewRouter(ctrl, sessions, log), nil
}

type handlers struct {
	ctrl     *Controller
	sessions *middleware.SessionManager
	log      *zap.Logger
}

// NewRouter builds the backend routes.
func NewRouter(ctrl *Controller, sessions *middleware.SessionManager, log *zap.Logger) http.Handler {
	h := &handlers{ctrl: ctrl, sessions: sessions, log: log}

	root := chi.NewRouter()
	root.Use(sessions.Wrap)

	// No Auth
	root.Group(func(r chi.Router) {
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.Get("/account/id/{id}/", h.account)
	})

	// Auth
	root.Group(func(r chi.Router) {
		r.Use(sessions.RequireAccount)
		r.Get("/whois", h.whois)
		r.Put("/change-password", h.changePassword)
		r.Put("/change-username", h.changeUsername)
	})

	return root
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Failed to create account: malformed body", http.StatusBadRequest)
		return
	}

	_, err := h.ctrl.CreateAccount(r.Context(), creds.Username, creds.Password)
	var vErr *form.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, repository.ErrExists):
		http.Error(w, "Failed to create account: "+err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("signup failed", zap.Error(err))
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	a, err := h.ctrl.ValidateLogin(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, errInvalidCredentials) {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.log.Error("login failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SetAuthenticated(r.Context(), a.ID); err != nil {
		h.log.Error("renew session", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, a.Identity())
}

// logout always succeeds, with or without a session.
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(r.Context()); err != nil {
		h.log.Warn("destroy session", zap.Error(err))
	}
	w.WriteHeader(http.StatusOK)
}

func (h *handlers) whois(w http.ResponseWriter, r *http.Request) {
	a, ok := h.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, a.Identity())
}

func (h *handlers) changePassword(w http.ResponseWriter, r *http.Request) {
	a, ok := h.current(w, r)
	if !ok {
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	if err := h.ctrl.ChangePassword(r.Context(), a.ID, body.Password); err != nil {
		http.Error(w, fmt.Sprintf("Failed to update password for account with id=%d", a.ID), http.StatusInternalServerError)
		return
	}
	writeJSON(w, true)
}

func (h *handlers) changeUsername(w http.ResponseWriter, r *http.Request) {
	a, ok := h.current(w, r)
	if !ok {
		return
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	updated, err := h.ctrl.ChangeUsername(r.Context(), a.ID, body.Username)
	if errors.Is(err, repository.ErrExists) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to update username for account with id=%d", a.ID), http.StatusInternalServerError)
		return
	}
	writeJSON(w, updated.Identity())
}

func (h *handlers) account(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	a, err := h.ctrl.GetAccount(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, model.Account{ID: a.ID, Name: a.Username})
}

// current loads the session's account; a session pointing at a deleted
// account counts as logged out.
func (h *handlers) current(w http.ResponseWriter, r *http.Request) (*repository.StoredAccount, bool) {
	id, err := h.sessions.AccountID(r.Context())
	if err != nil {
		http.Error(w, "No user logged in", http.StatusUnauthorized)
		return nil, false
	}

	a, err := h.ctrl.GetAccount(r.Context(), id)
	if err != nil {
		http.Error(w, "No user logged in", http.StatusUnauthorized)
		return nil, false
	}
	return a, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
