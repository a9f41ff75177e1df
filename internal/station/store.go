// Package station implements the worker-station side: a local SQLite
// store for the task snapshot and the offline work log, and a client that
// talks to the central station over TCP.
package station

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
	"github.com/timeclock-hq/timeclock-backend-go/internal/wire"
)

var storeMigrations = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id            INTEGER PRIMARY KEY,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL,
		seconds_spent INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS log_entries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_type INTEGER NOT NULL,
		entry_time TEXT NOT NULL,
		login      TEXT NOT NULL,
		task_id    INTEGER
	)`,
}

// Store is the station's local database. SQLite allows a single writer,
// so the pool is capped at one connection.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and on first run creates) the station database under
// dataDir.
func OpenStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "station.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	for _, migration := range storeMigrations {
		if _, err := db.Exec(migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migration: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DeviceUUID returns the station's stable identifier, generating and
// persisting one on first call.
func (s *Store) DeviceUUID(ctx context.Context) (string, error) {
	existing, err := s.setting(ctx, "device_uuid")
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}
	generated := uuid.NewString()
	if err := s.setSetting(ctx, "device_uuid", generated); err != nil {
		return "", err
	}
	return generated, nil
}

// CurrentLogin returns the operator bound to this station, or empty when
// nobody is logged in.
func (s *Store) CurrentLogin(ctx context.Context) (string, error) {
	return s.setting(ctx, "current_login")
}

func (s *Store) SetCurrentLogin(ctx context.Context, login string) error {
	return s.setSetting(ctx, "current_login", login)
}

// CurrentPassword returns the bound operator's wire secret. The secret is
// kept in clear because the handshake digests it together with a nonce.
func (s *Store) CurrentPassword(ctx context.Context) (string, error) {
	return s.setting(ctx, "current_password")
}

// SetCredentials binds (or with empty values unbinds) an operator.
func (s *Store) SetCredentials(ctx context.Context, login, password string) error {
	if err := s.setSetting(ctx, "current_login", login); err != nil {
		return err
	}
	return s.setSetting(ctx, "current_password", password)
}

// ReplaceTasks swaps the local task snapshot for a freshly retrieved one.
func (s *Store) ReplaceTasks(ctx context.Context, tasks []task.AssignedTask) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	for _, t := range tasks {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO tasks (id, title, description, seconds_spent) VALUES (?, ?, ?, ?)",
			t.ID, t.Title, t.Description, t.SecondsSpent,
		)
		if err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// Tasks returns the local task snapshot ordered by id.
func (s *Store) Tasks(ctx context.Context) ([]task.AssignedTask, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, description, seconds_spent FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.AssignedTask
	for rows.Next() {
		var t task.AssignedTask
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.SecondsSpent); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AppendEntry records a timer event in the offline log. The timestamp is
// stored in UTC at millisecond precision, matching what goes on the wire.
func (s *Store) AppendEntry(ctx context.Context, entry worklog.Entry) error {
	var taskID any
	if entry.TaskID != nil {
		taskID = *entry.TaskID
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO log_entries (entry_type, entry_time, login, task_id) VALUES (?, ?, ?, ?)",
		int(entry.Type), wire.FormatTimestamp(entry.Timestamp), entry.Login, taskID,
	)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// EntriesAfter returns log entries strictly newer than since, oldest
// first. A nil since returns the whole log.
func (s *Store) EntriesAfter(ctx context.Context, since *time.Time) ([]worklog.Entry, error) {
	query := "SELECT entry_type, entry_time, login, task_id FROM log_entries"
	args := []any{}
	if since != nil {
		query += " WHERE entry_time > ?"
		args = append(args, wire.FormatTimestamp(*since))
	}
	query += " ORDER BY entry_time, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	var entries []worklog.Entry
	for rows.Next() {
		var (
			entryType int
			stamp     string
			entry     worklog.Entry
			taskID    sql.NullInt64
		)
		if err := rows.Scan(&entryType, &stamp, &entry.Login, &taskID); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entry.Type = worklog.EntryType(entryType)
		entry.Timestamp, err = wire.ParseTimestamp(stamp)
		if err != nil {
			return nil, fmt.Errorf("parse stored timestamp: %w", err)
		}
		if taskID.Valid {
			id := taskID.Int64
			entry.TaskID = &id
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}
