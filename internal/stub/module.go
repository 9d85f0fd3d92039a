package stub

import (
	"github.com/ghaggin/randomtables/internal/middleware"
	"github.com/ghaggin/randomtables/internal/repository"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		New,
		NewController,
		middleware.NewSessionManager,
		repository.NewJSON,
	),
)
