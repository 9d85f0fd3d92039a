package stub

import (
	"context"
	"errors"

	"github.com/ghaggin/randomtables/internal/form"
	"github.com/ghaggin/randomtables/internal/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
)

type Controller struct {
	repo repository.Repository
	log  *zap.Logger
	cost int
}

type ControllerParams struct {
	fx.In

	Logger *zap.Logger
	Repo   repository.Repository
}

func NewController(p ControllerParams) (*Controller, error) {
	return &Controller{
		log:  p.Logger,
		repo: p.Repo,
		cost: bcrypt.DefaultCost,
	}, nil
}

func (c *Controller) ValidateLogin(ctx context.Context, username string, password string) (*repository.StoredAccount, error) {
	a, err := c.repo.GetAccountByName(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	return a, nil
}

func (c *Controller) CreateAccount(ctx context.Context, username, password string) (*repository.StoredAccount, error) {
	if err := (form.Signup{Username: username, Password: password}).Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return nil, err
	}

	a := &repository.StoredAccount{Username: username, PasswordHash: string(hash)}
	if err := c.repo.AddAccount(ctx, a); err != nil {
		return nil, err
	}

	c.log.Info("account created", zap.Int("id", a.ID), zap.String("username", a.Username))
	return a, nil
}

func (c *Controller) ChangePassword(ctx context.Context, id int, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return err
	}
	return c.repo.UpdatePassword(ctx, id, string(hash))
}

func (c *Controller) ChangeUsername(ctx context.Context, id int, username string) (*repository.StoredAccount, error) {
	return c.repo.UpdateUsername(ctx, id, username)
}

func (c *Controller) GetAccount(ctx context.Context, id int) (*repository.StoredAccount, error) {
	return c.repo.GetAccountByID(ctx, id)
}
