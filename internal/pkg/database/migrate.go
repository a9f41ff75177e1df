package database

import (
	"context"
	"fmt"
)

// Schema statements applied on startup. Idempotent: every statement is
// guarded by IF NOT EXISTS.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		login      VARCHAR(32) PRIMARY KEY,
		password   VARCHAR(64) NOT NULL,
		name       VARCHAR(100) NOT NULL,
		active     BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		title       VARCHAR(100) NOT NULL UNIQUE,
		description TEXT NOT NULL,
		status      INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS employee_tasks (
		employee          VARCHAR(32) NOT NULL REFERENCES employees(login),
		task              BIGINT NOT NULL REFERENCES tasks(id),
		assignment_active BOOLEAN NOT NULL DEFAULT TRUE,
		finished          BOOLEAN NOT NULL DEFAULT FALSE,
		time_spent        BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (employee, task)
	)`,
	`CREATE TABLE IF NOT EXISTS devices (
		id   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		uuid VARCHAR(36) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS work_log_entries (
		id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		entry_type INTEGER NOT NULL,
		entry_time TIMESTAMPTZ NOT NULL,
		employee   VARCHAR(32) NOT NULL REFERENCES employees(login),
		task       BIGINT REFERENCES tasks(id),
		device     BIGINT NOT NULL REFERENCES devices(id),
		processed  BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS work_log_entries_unprocessed_idx
		ON work_log_entries (employee, entry_time) WHERE NOT processed`,
	`CREATE INDEX IF NOT EXISTS work_log_entries_device_idx
		ON work_log_entries (device, entry_time)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the schema. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
