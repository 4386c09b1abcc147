package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	pkgdb "library-backend/pkg/database"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies every embedded schema file in lexical order.
// The files are idempotent (IF NOT EXISTS) and run in one transaction.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	files, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("list schema files: %w", err)
	}
	sort.Strings(files)

	return pkgdb.WithTransaction(ctx, db.Pool, func(tx pgx.Tx) error {
		for _, name := range files {
			ddl, err := schemaFS.ReadFile(name)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, string(ddl)); err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
			log.Info().Str("file", name).Msg("[DATABASE] schema applied")
		}
		return nil
	})
}
