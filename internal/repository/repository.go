package repository

import (
	"context"
	"errors"

	"github.com/ghaggin/randomtables/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("account already exists")
)

// StoredAccount is an account as the stub backend keeps it.
type StoredAccount struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

func (a StoredAccount) Identity() *model.Identity {
	return &model.Identity{ID: a.ID, Username: a.Username}
}

type Repository interface {
	GetAccountByName(ctx context.Context, name string) (*StoredAccount, error)
	GetAccountByID(ctx context.Context, id int) (*StoredAccount, error)
	AddAccount(ctx context.Context, acct *StoredAccount) error
	UpdatePassword(ctx context.Context, id int, hash string) error
	UpdateUsername(ctx context.Context, id int, name string) (*StoredAccount, error)
}
