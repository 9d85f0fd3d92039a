// Package console is a line-oriented front end over the session manager.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ghaggin/randomtables/internal/model"
	"github.com/ghaggin/randomtables/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const quitCommand = "q"

// Accounts covers the backend calls that do not involve the session state.
type Accounts interface {
	CreateAccount(ctx context.Context, creds model.Credentials) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
}

type Console struct {
	sessions *session.Manager
	accounts Accounts
	log      *zap.Logger

	in  io.Reader
	out io.Writer

	cancel context.CancelFunc
	done   chan struct{}
}

type Params struct {
	fx.In

	Sessions *session.Manager
	Accounts Accounts
	Log      *zap.Logger
}

func New(p Params) *Console {
	return NewWithIO(p, os.Stdin, os.Stdout)
}

func NewWithIO(p Params, in io.Reader, out io.Writer) *Console {
	return &Console{
		sessions: p.Sessions,
		accounts: p.Accounts,
		log:      p.Log,
		in:       in,
		out:      out,
		done:     make(chan struct{}),
	}
}

// Run reads commands until q, EOF or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer close(c.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := c.sessions.Subscribe(func(s model.Session) {
		fmt.Fprintf(c.out, "[session %s]\n", s.State)
	})
	defer unsubscribe()

	fmt.Fprintf(c.out, "type a command (help for a list), %s + <Enter> to exit...\n", quitCommand)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			line = strings.TrimSpace(line)
			if line == quitCommand {
				fmt.Fprintln(c.out, "exiting")
				return nil
			}
			if line == "" {
				continue
			}
			c.Exec(ctx, strings.Fields(line))
		}
	}
}

// Exec runs a single command and prints its outcome.
func (c *Console) Exec(ctx context.Context, args []string) {
	cmd := c.newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(c.out)
	cmd.SetErr(c.out)

	if err := cmd.ExecuteContext(ctx); err != nil {
		c.log.Debug("command failed", zap.Strings("args", args), zap.Error(err))
		fmt.Fprintln(c.out, message(err))
	}
}

type shutdowner interface {
	Shutdown(...fx.ShutdownOption) error
}

func (c *Console) start(sd shutdowner) func(context.Context) error {
	return func(_ context.Context) error {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		go func() {
			if err := c.Run(ctx); err != nil {
				c.log.Error("console input", zap.Error(err))
			}
			if ctx.Err() == nil {
				_ = sd.Shutdown()
			}
		}()
		return nil
	}
}

func (c *Console) stop(ctx context.Context) error {
	if c.cancel == nil {
		return nil
	}
	c.cancel()

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, sd fx.Shutdowner, c *Console) {
	lc.Append(fx.Hook{
		OnStart: c.start(sd),
		OnStop:  c.stop,
	})
}
