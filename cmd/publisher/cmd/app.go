package cmd

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appfx "forge-build-publisher/internal/app/fx"
)

// withApp starts an fx app built from opts, runs fn, then stops the app even
// when fn fails.
func withApp(ctx context.Context, fn func(ctx context.Context) error, opts ...fx.Option) (err error) {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		appfx.CoreAppOptions,
		fx.Options(opts...),
	)

	startCtx, startCancel := context.WithTimeout(ctx, 60*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer stopCancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	return fn(ctx)
}
