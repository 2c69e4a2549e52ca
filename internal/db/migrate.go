package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Every statement is idempotent, so it is safe
// to run on each start.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS translations (
		id                    TEXT PRIMARY KEY,
		created_at            TEXT NOT NULL,
		reference_date        TEXT NOT NULL,
		message               TEXT NOT NULL,
		success               INTEGER NOT NULL,
		failure_kind          TEXT NOT NULL DEFAULT '',
		needs_clarification   INTEGER NOT NULL DEFAULT 0,
		requires_confirmation INTEGER NOT NULL DEFAULT 0,
		response_message      TEXT NOT NULL DEFAULT '',
		questions_json        TEXT NOT NULL DEFAULT '[]',
		model                 TEXT NOT NULL DEFAULT '',
		raw_reply             TEXT NOT NULL DEFAULT '',
		dropped_actions       INTEGER NOT NULL DEFAULT 0,
		latency_ms            INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_translations_created_at ON translations(created_at)`,
	`CREATE TABLE IF NOT EXISTS translation_actions (
		translation_id        TEXT NOT NULL REFERENCES translations(id) ON DELETE CASCADE,
		seq                   INTEGER NOT NULL,
		type                  TEXT NOT NULL,
		params_json           TEXT NOT NULL DEFAULT '{}',
		description           TEXT NOT NULL,
		requires_confirmation INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (translation_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_translation_actions_type ON translation_actions(type)`,
}
