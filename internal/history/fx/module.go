package fx

import (
	"forge-build-publisher/internal/history"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"history",
	fx.Provide(history.NewStore),
)
