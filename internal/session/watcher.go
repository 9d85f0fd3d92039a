package session

import (
	"context"
	"sync"
	"time"

	"github.com/ghaggin/randomtables/internal/config"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Watcher polls the session cookie so the manager heals itself when the
// cookie is set or cleared outside of its own operations.
type Watcher struct {
	manager  *Manager
	clock    clockwork.Clock
	interval time.Duration
	log      *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

type WatcherParams struct {
	fx.In

	Manager *Manager
	Config  *config.Config
	Log     *zap.Logger
	Clock   clockwork.Clock `optional:"true"`
}

func NewWatcher(p WatcherParams) *Watcher {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Watcher{
		manager:  p.Manager,
		clock:    clock,
		interval: p.Config.Session.WatchInterval,
		log:      p.Log,
		done:     make(chan struct{}),
	}
}

// Run observes once immediately and then on every tick until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.done)

	w.manager.ObserveCookie(ctx)

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			w.manager.ObserveCookie(ctx)
		}
	}
}

func (w *Watcher) start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.Run(ctx)
	w.log.Debug("session watcher started", zap.Duration("interval", w.interval))
	return nil
}

func (w *Watcher) stop(ctx context.Context) error {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
	})
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, w *Watcher) {
	lc.Append(fx.Hook{
		OnStart: w.start,
		OnStop:  w.stop,
	})
}
