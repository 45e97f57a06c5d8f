package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Snapshot cache",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS snapshots (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					fetched_at DATETIME NOT NULL,
					claim_count INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE TABLE IF NOT EXISTS snapshot_claims (
					snapshot_id INTEGER NOT NULL,
					status TEXT NOT NULL CHECK (status IN ('approved', 'rejected', 'pending')),
					position INTEGER NOT NULL,
					claim_id TEXT NOT NULL,
					member_name TEXT NOT NULL DEFAULT '',
					policy_name TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					provider_name TEXT NOT NULL DEFAULT '',
					provider_role TEXT NOT NULL DEFAULT '',
					rejection_reason TEXT NOT NULL DEFAULT '',
					amount REAL,
					created_at DATETIME,
					PRIMARY KEY (snapshot_id, status, position),
					FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Review action log",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS actions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					claim_id TEXT NOT NULL,
					action_type TEXT NOT NULL,
					reason TEXT NOT NULL DEFAULT '',
					performed_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_actions_claim ON actions(claim_id)`,
				`CREATE INDEX idx_actions_performed_at ON actions(performed_at)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Index snapshots by fetch time",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX idx_snapshots_fetched_at ON snapshots(fetched_at)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
