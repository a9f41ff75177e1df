package worklog

import "errors"

// Worklog domain errors
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrEntryNotFound  = errors.New("log entry not found")
)
