package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"forge-build-publisher/db/migrations"
)

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "sqlite", "libsql":
		return "sqlite3", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported history driver %q", driver)
	}
}

// Migrate runs a goose command ("up", "down", "status", ...) against the
// embedded history migrations.
func Migrate(ctx context.Context, conn *sqlx.DB, driver, cmd string, args ...string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrations.FS)

	if err := goose.RunContext(ctx, cmd, conn.DB, ".", args...); err != nil {
		return fmt.Errorf("goose run %q: %w", cmd, err)
	}
	return nil
}
