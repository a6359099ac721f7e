package history

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"forge-build-publisher/config"
	"forge-build-publisher/db"
)

type AutoMigrateParams struct {
	fx.In

	Lc     fx.Lifecycle
	DB     *sqlx.DB `name:"history" optional:"true"`
	Cfg    *config.Config
	Logger *zap.SugaredLogger
}

// RegisterAutoMigrate brings the history schema up to date on start.
func RegisterAutoMigrate(p AutoMigrateParams) {
	if p.DB == nil {
		return
	}
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Migrate(ctx, p.DB, p.Cfg.History.Driver, "up"); err != nil {
				return err
			}
			p.Logger.Debugw("history_migrated", "driver", p.Cfg.History.Driver)
			return nil
		},
	})
}
