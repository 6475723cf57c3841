package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every embedded migration in file-name order. Migrations are
// written to be idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	files, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := migrationFS.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		slog.InfoContext(ctx, "migration applied", "file", f)
	}
	return nil
}

// DropAll removes every table created by Migrate.
func (db *DB) DropAll(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `DROP TABLE IF EXISTS drone_positions; DROP TABLE IF EXISTS missions;`)
	return err
}
