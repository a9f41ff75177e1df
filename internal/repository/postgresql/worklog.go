package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/database"
)

type worklogRepository struct {
	db *database.DB
}

func NewWorklogRepository(db *database.DB) worklog.WorklogRepository {
	return &worklogRepository{db: db}
}

// FindOrCreateDevice implements worklog.WorklogRepository.
func (r *worklogRepository) FindOrCreateDevice(ctx context.Context, uuid string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	// Upsert keeps concurrent first-sight registrations of the same UUID
	// from racing.
	query := `
		INSERT INTO devices (uuid)
		VALUES ($1)
		ON CONFLICT (uuid) DO UPDATE SET uuid = EXCLUDED.uuid
		RETURNING id
	`

	var id int64
	if err := q.QueryRow(ctx, query, uuid).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to find or create device: %w", err)
	}

	return id, nil
}

// InsertEntry implements worklog.WorklogRepository.
func (r *worklogRepository) InsertEntry(ctx context.Context, entry worklog.Entry, deviceID int64) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_log_entries (entry_type, entry_time, employee, task, device)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query, int(entry.Type), entry.Timestamp, entry.Login, entry.TaskID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	return nil
}

// LastEntryTimestampForDevice implements worklog.WorklogRepository.
func (r *worklogRepository) LastEntryTimestampForDevice(ctx context.Context, deviceID int64) (*time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT entry_time
		FROM work_log_entries
		WHERE device = $1
		ORDER BY entry_time DESC
		LIMIT 1
	`

	var ts time.Time
	err := q.QueryRow(ctx, query, deviceID).Scan(&ts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last entry timestamp: %w", err)
	}

	return &ts, nil
}

// UnprocessedEntriesForEmployee implements worklog.WorklogRepository.
func (r *worklogRepository) UnprocessedEntriesForEmployee(ctx context.Context, login string) ([]worklog.StoredEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, entry_type, entry_time, employee, task, device, processed
		FROM work_log_entries
		WHERE employee = $1 AND NOT processed
		ORDER BY entry_time, id
	`

	rows, err := q.Query(ctx, query, login)
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed entries: %w", err)
	}
	defer rows.Close()

	var entries []worklog.StoredEntry
	for rows.Next() {
		var e worklog.StoredEntry
		var entryType int
		if err := rows.Scan(&e.ID, &entryType, &e.Timestamp, &e.Login, &e.TaskID, &e.DeviceID, &e.Processed); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		e.Type = worklog.EntryType(entryType)
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// MarkProcessed implements worklog.WorklogRepository.
func (r *worklogRepository) MarkProcessed(ctx context.Context, entryID int64) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE work_log_entries SET processed = TRUE WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("failed to mark entry processed: %w", err)
	}

	return nil
}
