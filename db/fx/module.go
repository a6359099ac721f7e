package fx

import (
	"forge-build-publisher/db"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"sqlx-history-db",
	fx.Provide(db.NewHistoryDB),
)
