package main

import (
	"flag"

	"github.com/ghaggin/randomtables/internal/backend"
	"github.com/ghaggin/randomtables/internal/config"
	"github.com/ghaggin/randomtables/internal/console"
	"github.com/ghaggin/randomtables/internal/session"
	"github.com/ghaggin/randomtables/internal/stub"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	modeConsole = "console"
	modeStub    = "stub"
)

func main() {
	var mode = flag.String("mode", modeConsole, "either console or stub")
	flag.Parse()

	app, ok := newApp(*mode)
	if !ok {
		panic("unrecognized mode")
	}

	app.Run()
}

func deps() fx.Option {
	return fx.Options(
		fx.Provide(
			zap.NewDevelopment,
			config.New,
		),
	)
}

// options returns the fx graph for mode.
func options(mode string) (fx.Option, bool) {
	switch mode {
	case modeConsole:
		return fx.Options(
			deps(),
			backend.Module,
			session.Module,
			console.Module,
			fx.Invoke(console.RegisterHooks),
		), true
	case modeStub:
		return fx.Options(
			deps(),
			stub.Module,
			fx.Invoke(stub.RegisterHooks),
		), true
	default:
		return nil, false
	}
}

func newApp(mode string) (*fx.App, bool) {
	opts, ok := options(mode)
	if !ok {
		return nil, false
	}
	return fx.New(
		opts,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	), true
}
