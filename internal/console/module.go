package console

import (
	"github.com/ghaggin/randomtables/internal/backend"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		New,
		func(c *backend.Client) Accounts { return c },
	),
)
