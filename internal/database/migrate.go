package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations applies the embedded SQL migrations to a postgres database.
// command is any goose command: up, down, status, redo, version.
func RunMigrations(ctx context.Context, dsn string, command string, args ...string) error {
	migrationCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("sql open: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(migrationCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log.Printf("[Migrate] running goose %s", command)

	if err := goose.RunContext(migrationCtx, command, db, "migrations", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}
