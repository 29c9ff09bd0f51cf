package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = map[Dialect][]string{
	DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS schedule (
			id          BIGSERIAL PRIMARY KEY,
			content     TEXT,
			date_ts     BIGINT NOT NULL,
			remind      BOOLEAN NOT NULL DEFAULT FALSE,
			repeat_kind TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_date_ts ON schedule (date_ts)`,
	},
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS schedule (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			content     TEXT,
			date_ts     INTEGER NOT NULL,
			remind      INTEGER NOT NULL DEFAULT 0,
			repeat_kind TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_date_ts ON schedule (date_ts)`,
	},
}

// EnsureSchema creates the schedule table and its index if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts, ok := schemaStatements[dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", dialect)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
