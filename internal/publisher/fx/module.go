package fx

import (
	"go.uber.org/fx"

	cachefx "forge-build-publisher/cache/fx"
	dbfx "forge-build-publisher/db/fx"
	"forge-build-publisher/internal/history"
	historyfx "forge-build-publisher/internal/history/fx"
	"forge-build-publisher/internal/lock"
	"forge-build-publisher/internal/notify"
	amqpfx "forge-build-publisher/internal/pkg/amqpclient/fx"
	"forge-build-publisher/internal/publisher"
)

var Module = fx.Module(
	"publisher",
	dbfx.Module,
	cachefx.Module,
	amqpfx.Module,
	historyfx.Module,
	fx.Provide(
		lock.NewLocker,
		notify.NewNotifier,
		publisher.New,
	),
	fx.Invoke(history.RegisterAutoMigrate),
)
