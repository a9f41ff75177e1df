package worklog

import (
	"context"
	"time"
)

// WorklogRepository defines data access methods for devices and stored
// log entries.
type WorklogRepository interface {
	// FindOrCreateDevice resolves a device UUID to its server-assigned id,
	// inserting the device on first sight.
	FindOrCreateDevice(ctx context.Context, uuid string) (int64, error)

	// InsertEntry persists an uploaded entry tagged with the device id.
	InsertEntry(ctx context.Context, entry Entry, deviceID int64) error

	// LastEntryTimestampForDevice returns the latest entry timestamp
	// previously received from the device, or nil when none exists.
	LastEntryTimestampForDevice(ctx context.Context, deviceID int64) (*time.Time, error)

	// UnprocessedEntriesForEmployee retrieves all entries with
	// processed = false for a login, ordered by timestamp ascending.
	UnprocessedEntriesForEmployee(ctx context.Context, login string) ([]StoredEntry, error)

	// MarkProcessed sets the processed flag on an entry. Re-marking an
	// already-processed entry is harmless.
	MarkProcessed(ctx context.Context, entryID int64) error
}
