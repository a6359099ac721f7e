package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"forge-build-publisher/config"
	"forge-build-publisher/db"
	dbfx "forge-build-publisher/db/fx"
	appfx "forge-build-publisher/internal/app/fx"
)

type MigrateCmd struct {
	Name string
	Args []string
}

func main() {
	cmd := MigrateCmd{Name: "up"}
	if len(os.Args) > 1 {
		cmd = MigrateCmd{Name: os.Args[1], Args: os.Args[2:]}
	}

	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.CoreAppOptions,
		dbfx.Module,
		fx.Supply(cmd),
		fx.Invoke(registerMigrateHook),
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type migrateHookParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *zap.SugaredLogger
	DB     *sqlx.DB `name:"history" optional:"true"`

	Cmd MigrateCmd
}

func registerMigrateHook(p migrateHookParams) error {
	if p.DB == nil {
		return errors.New("nothing to migrate: " + db.ErrHistoryDisabled.Error())
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Infow("goose_run_start", "cmd", p.Cmd.Name, "driver", p.Cfg.History.Driver)
			if err := db.Migrate(ctx, p.DB, p.Cfg.History.Driver, p.Cmd.Name, p.Cmd.Args...); err != nil {
				return err
			}
			p.Logger.Infow("goose_run_done", "cmd", p.Cmd.Name)
			return nil
		},
	})
	return nil
}
