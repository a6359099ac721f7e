package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	dbfx "forge-build-publisher/db/fx"
	appfx "forge-build-publisher/internal/app/fx"
	healthfx "forge-build-publisher/internal/app/health/fx"
	runsfx "forge-build-publisher/internal/app/runs/fx"
	"forge-build-publisher/internal/history"
	historyfx "forge-build-publisher/internal/history/fx"
	routerfx "forge-build-publisher/internal/router/fx"
	serverfx "forge-build-publisher/internal/server/fx"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.CoreAppOptions,
		dbfx.Module,
		historyfx.Module,
		fx.Invoke(history.RegisterAutoMigrate),
		routerfx.CoreRouterOptions,
		serverfx.Module,
		healthfx.Module,
		runsfx.Module,
	)

	app.Run()
}
