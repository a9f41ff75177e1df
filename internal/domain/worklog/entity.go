package worklog

import "time"

// EntryType identifies the five work-log event kinds a worker station
// records.
type EntryType int

const (
	EntryLogin      EntryType = 0
	EntryLogout     EntryType = 1
	EntryTaskStart  EntryType = 2
	EntryTaskPause  EntryType = 3
	EntryTaskFinish EntryType = 4
)

func (t EntryType) String() string {
	switch t {
	case EntryLogin:
		return "LOGIN"
	case EntryLogout:
		return "LOGOUT"
	case EntryTaskStart:
		return "TASK START"
	case EntryTaskPause:
		return "TASK PAUSE"
	case EntryTaskFinish:
		return "TASK FINISH"
	default:
		return "UNKNOWN"
	}
}

// IsTaskEvent reports whether entries of this type must carry a task id.
func (t EntryType) IsTaskEvent() bool {
	switch t {
	case EntryTaskStart, EntryTaskPause, EntryTaskFinish:
		return true
	}
	return false
}

// Entry is a work-log event as produced on a worker station and uploaded
// verbatim. TaskID is set only for task-typed entries.
type Entry struct {
	Type      EntryType
	Timestamp time.Time
	Login     string
	TaskID    *int64
}

// StoredEntry is the server-side durable record of an uploaded entry.
// Processed transitions at most once, false to true, and only as a side
// effect of a completed reconciliation pass that covered the entry.
type StoredEntry struct {
	Entry
	ID        int64
	DeviceID  int64
	Processed bool
}

// Device is a physical worker station, identified by the UUID it generated
// for itself on first run and registered during the handshake.
type Device struct {
	ID   int64
	UUID string
}
