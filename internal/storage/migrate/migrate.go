// Package migrate applies the embedded goose migrations. The command and
// query schemas migrate independently because they may live in different
// databases; no constraint ever crosses the two.
package migrate

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/command/*.sql migrations/query/*.sql
var embedMigrations embed.FS

// CommandUp applies the command-schema migrations to the given database.
func CommandUp(dsn string) error {
	return up(dsn, "migrations/command")
}

// QueryUp applies the query-schema migrations to the given database.
func QueryUp(dsn string) error {
	return up(dsn, "migrations/query")
}

func up(dsn, dir string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrate: open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migrate: up %s: %w", dir, err)
	}
	return nil
}
