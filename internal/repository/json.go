package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/ghaggin/randomtables/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

type Data struct {
	Accounts []StoredAccount `json:"accounts"`
}

type jsonRepo struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	data *Data
}

type jsonParams struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

// NewJSON keeps accounts in memory and, when a data path is configured,
// loads them on start and writes them back when the app stops.
func NewJSON(p jsonParams) (Repository, error) {
	r := NewMemory(p.Log)
	r.path = p.Config.Stub.DataPath
	if r.path == "" {
		return r, nil
	}

	err := r.readfile()
	if err != nil {
		// only log, data will be empty and will overwrite when
		// the service is stopped
		r.log.Warn("failed reading json repo data file", zap.String("path", r.path), zap.Error(err))
	}

	p.LC.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r, nil
}

// NewMemory returns a repository that is never persisted.
func NewMemory(log *zap.Logger) *jsonRepo {
	return &jsonRepo{
		log:  log,
		data: &Data{},
	}
}

func (r *jsonRepo) stop(_ context.Context) error {
	return r.writefile()
}

func (r *jsonRepo) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTableFileIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	return json.NewDecoder(f).Decode(&r.data)
}

func (r *jsonRepo) writefile() error {
	r.mu.RLock()
	b, err := json.MarshalIndent(r.data, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return err
	}

	return os.WriteFile(r.path, b, 0o600)
}

func (r *jsonRepo) GetAccountByName(_ context.Context, name string) (*StoredAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.data.Accounts {
		if a.Username == name {
			return &a, nil
		}
	}

	return nil, ErrNotFound
}

func (r *jsonRepo) GetAccountByID(_ context.Context, id int) (*StoredAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	a := r.data.Accounts[i]
	return &a, nil
}

func (r *jsonRepo) AddAccount(_ context.Context, acct *StoredAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.data.Accounts {
		if a.Username == acct.Username {
			return ErrExists
		}
	}

	acct.ID = 1
	l := len(r.data.Accounts)
	if l > 0 {
		acct.ID = r.data.Accounts[l-1].ID + 1
	}

	r.data.Accounts = append(r.data.Accounts, *acct)
	return nil
}

func (r *jsonRepo) UpdatePassword(_ context.Context, id int, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.data.Accounts[i].PasswordHash = hash
	return nil
}

func (r *jsonRepo) UpdateUsername(_ context.Context, id int, name string) (*StoredAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	for _, a := range r.data.Accounts {
		if a.Username == name && a.ID != id {
			return nil, ErrExists
		}
	}
	r.data.Accounts[i].Username = name
	a := r.data.Accounts[i]
	return &a, nil
}

func (r *jsonRepo) indexOf(id int) int {
	for i, a := range r.data.Accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
