package fx

import (
	"go.uber.org/fx"

	"forge-build-publisher/internal/app/runs"
	"forge-build-publisher/internal/router"
)

var Module = fx.Options(
	fx.Provide(
		router.AsRoute(runs.NewListHandler),
		router.AsRoute(runs.NewGetByIDHandler),
	),
)
