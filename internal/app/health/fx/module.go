package fx

import (
	"go.uber.org/fx"

	"forge-build-publisher/internal/app/health"
	"forge-build-publisher/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(health.NewHandler)),
)
