// Package schema applies the embedded migrations to the remote store.
package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kaktotak00p/notes/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

var gooseUpContext = goose.UpContext

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}
