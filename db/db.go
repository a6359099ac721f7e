package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"forge-build-publisher/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var ErrHistoryDisabled = errors.New("run history disabled: set HISTORY_DRIVER and HISTORY_DSN")

// sqlDriverName maps HISTORY_DRIVER onto the database/sql driver name.
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case "sqlite":
		return "sqlite", nil
	case "libsql":
		return "libsql", nil
	case "postgres":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported history driver %q", driver)
	}
}

// Open connects to the history database without pinging it.
func Open(cfg config.HistoryConfig) (*sqlx.DB, error) {
	name, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if cfg.Driver == "libsql" {
		dsn = ensureAuthTokenQuery(dsn, cfg.AuthToken)
	}

	conn, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s history db: %w", cfg.Driver, err)
	}
	conn.Mapper = reflectx.NewMapperFunc("db", strings.ToLower)

	switch cfg.Driver {
	case "sqlite":
		// One writer keeps a local file free of SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
	default:
		conn.SetMaxOpenConns(5)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}
	return conn, nil
}

type HistoryDBOut struct {
	fx.Out

	DB *sqlx.DB `name:"history"`
}

type NewHistoryDBParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *zap.SugaredLogger
}

// NewHistoryDB provides a nil *sqlx.DB when history is disabled so callers can
// keep running without persistence.
func NewHistoryDB(p NewHistoryDBParams) (HistoryDBOut, error) {
	if p.Cfg.History.Driver == "" {
		p.Logger.Infow("history_disabled", "reason", "missing HISTORY_DRIVER")
		return HistoryDBOut{}, nil
	}

	conn, err := Open(p.Cfg.History)
	if err != nil {
		return HistoryDBOut{}, err
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := conn.PingContext(pingCtx); err != nil {
				_ = conn.Close()
				return fmt.Errorf("ping history db: %w", err)
			}
			p.Logger.Infow("history_enabled", append([]any{"driver", p.Cfg.History.Driver}, dsnLogFields(p.Cfg.History.DSN)...)...)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := conn.Close(); err != nil {
				p.Logger.Warnw("history_close_failed", "err", err)
			}
			return nil
		},
	})

	return HistoryDBOut{DB: conn}, nil
}

func ensureAuthTokenQuery(dsn, token string) string {
	if token == "" {
		return dsn
	}

	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}

	// Local files never take a token.
	if strings.EqualFold(u.Scheme, "file") || strings.EqualFold(u.Scheme, "sqlite") {
		return dsn
	}

	q := u.Query()
	if q.Get("authToken") != "" {
		return dsn
	}

	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// dsnLogFields never includes credentials or tokens.
func dsnLogFields(dsn string) []any {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return []any{"dsn", "local"}
	}
	return []any{"scheme", u.Scheme, "host", u.Host}
}
