package fx

import (
	"go.uber.org/fx"

	"forge-build-publisher/internal/server"
)

var Module = fx.Options(
	fx.Provide(server.NewHTTPServer),
	fx.Invoke(RegisterHTTPServerLifecycle),
)
