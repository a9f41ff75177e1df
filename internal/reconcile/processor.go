// Package reconcile replays uploaded work-log entries into per-assignment
// elapsed-time totals. A batch covers the unprocessed entries of a single
// employee in timestamp order; anything inconsistent in the stream is
// reported as an anomaly and dropped, never raised as an error. Only
// persistence I/O failures abort a pass.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
	"github.com/timeclock-hq/timeclock-backend-go/internal/wire"
)

// AssignmentSource loads the current status of an (employee, task)
// assignment. Returns nil when the employee was never assigned.
type AssignmentSource interface {
	AssignmentStatus(ctx context.Context, login string, taskID int64) (*task.AssignmentStatus, error)
}

// Anomaly is a detected, non-fatal inconsistency in the uploaded stream.
type Anomaly struct {
	EntryID int64
	Reason  string
}

// Result is the outcome of a reconciliation pass: entry ids to mark
// processed and the mutated assignment statuses to persist.
type Result struct {
	ProcessedIDs []int64
	Assignments  map[int64]task.AssignmentStatus
	Anomalies    []Anomaly
}

type cachedAssignment struct {
	status  task.AssignmentStatus
	mutated bool
}

// Processor carries the matching state across one batch.
type Processor struct {
	login       string
	source      AssignmentSource
	logger      *slog.Logger
	prev        *time.Time
	openLogin   *worklog.StoredEntry
	openStarts  map[int64]worklog.StoredEntry
	assignments map[int64]*cachedAssignment
	processed   []int64
	anomalies   []Anomaly
}

func NewProcessor(login string, source AssignmentSource, logger *slog.Logger) *Processor {
	return &Processor{
		login:       login,
		source:      source,
		logger:      logger,
		openStarts:  make(map[int64]worklog.StoredEntry),
		assignments: make(map[int64]*cachedAssignment),
	}
}

// Process consumes one entry. Entries must arrive in the order the store
// returned them (timestamp ascending). The returned error is always a
// persistence failure; stream inconsistencies surface as anomalies.
func (p *Processor) Process(ctx context.Context, entry worklog.StoredEntry) error {
	ok, err := p.preliminaryValidate(ctx, entry)
	if err != nil {
		return err
	}
	if !ok {
		p.processed = append(p.processed, entry.ID)
		return nil
	}

	switch entry.Type {
	case worklog.EntryLogin:
		if p.openLogin != nil {
			p.anomaly(entry, fmt.Sprintf("login before logout (previous login %s at device %d)",
				wire.FormatTimestamp(p.openLogin.Timestamp), p.openLogin.DeviceID))
			p.processed = append(p.processed, p.openLogin.ID)
		}
		p.openLogin = &entry

	case worklog.EntryLogout:
		if p.openLogin == nil {
			p.anomaly(entry, "logout before login")
		} else {
			if p.openLogin.DeviceID != entry.DeviceID {
				p.anomaly(entry, fmt.Sprintf("login at different station: %s at device %d",
					wire.FormatTimestamp(p.openLogin.Timestamp), p.openLogin.DeviceID))
			}
			p.processed = append(p.processed, p.openLogin.ID)
			p.openLogin = nil
		}
		p.processed = append(p.processed, entry.ID)

	case worklog.EntryTaskStart:
		taskID := *entry.TaskID
		if prev, found := p.openStarts[taskID]; found {
			p.anomaly(entry, fmt.Sprintf("work start before work stop (previous start %s at device %d)",
				wire.FormatTimestamp(prev.Timestamp), prev.DeviceID))
			p.processed = append(p.processed, prev.ID)
		}
		p.openStarts[taskID] = entry

	case worklog.EntryTaskPause, worklog.EntryTaskFinish:
		taskID := *entry.TaskID
		start, found := p.openStarts[taskID]
		if !found {
			p.anomaly(entry, "work stop before work start")
			p.processed = append(p.processed, entry.ID)
			break
		}
		if start.DeviceID != entry.DeviceID {
			p.anomaly(entry, fmt.Sprintf("work start at different station: %s at device %d",
				wire.FormatTimestamp(start.Timestamp), start.DeviceID))
		}
		cached := p.assignments[taskID] // loaded during validation
		cached.status.TimeSpent += entry.Timestamp.Sub(start.Timestamp)
		if entry.Type == worklog.EntryTaskFinish {
			cached.status.Finished = true
		}
		cached.mutated = true
		p.processed = append(p.processed, start.ID, entry.ID)
		delete(p.openStarts, taskID)
	}

	return nil
}

// Result finalizes the batch. Entries still open (an unmatched LOGIN or
// TASK START) stay unprocessed and are retried with the next batch.
func (p *Processor) Result() Result {
	res := Result{
		ProcessedIDs: p.processed,
		Assignments:  make(map[int64]task.AssignmentStatus),
		Anomalies:    p.anomalies,
	}
	for taskID, cached := range p.assignments {
		if cached.mutated {
			res.Assignments[taskID] = cached.status
		}
	}
	return res
}

func (p *Processor) preliminaryValidate(ctx context.Context, entry worklog.StoredEntry) (bool, error) {
	if entry.Login != p.login {
		p.anomaly(entry, fmt.Sprintf("invalid employee (%s instead of %s)", entry.Login, p.login))
		return false, nil
	}
	if p.prev != nil && p.prev.After(entry.Timestamp) {
		p.anomaly(entry, fmt.Sprintf("timestamp not in order (previous timestamp %s)", wire.FormatTimestamp(*p.prev)))
		return false, nil
	}
	ts := entry.Timestamp
	p.prev = &ts

	switch entry.Type {
	case worklog.EntryLogin, worklog.EntryLogout:
		if entry.TaskID != nil {
			p.anomaly(entry, "unexpected task id")
			return false, nil
		}
	case worklog.EntryTaskStart, worklog.EntryTaskPause, worklog.EntryTaskFinish:
		return p.checkTask(ctx, entry)
	default:
		p.anomaly(entry, fmt.Sprintf("invalid type: %d", entry.Type))
		return false, nil
	}
	return true, nil
}

func (p *Processor) checkTask(ctx context.Context, entry worklog.StoredEntry) (bool, error) {
	if entry.TaskID == nil {
		p.anomaly(entry, "task id missing")
		return false, nil
	}
	cached, err := p.getAssignment(ctx, entry)
	if err != nil {
		return false, err
	}
	if cached == nil {
		return false, nil
	}
	if cached.status.Finished {
		p.anomaly(entry, "employee already finished this task, but processing anyway")
	}
	return true, nil
}

func (p *Processor) getAssignment(ctx context.Context, entry worklog.StoredEntry) (*cachedAssignment, error) {
	taskID := *entry.TaskID
	if cached, found := p.assignments[taskID]; found {
		return cached, nil
	}
	status, err := p.source.AssignmentStatus(ctx, p.login, taskID)
	if err != nil {
		return nil, fmt.Errorf("load assignment status for task %d: %w", taskID, err)
	}
	if status == nil {
		p.anomaly(entry, "employee was never assigned to this task")
		return nil, nil
	}
	cached := &cachedAssignment{status: *status}
	p.assignments[taskID] = cached
	return cached, nil
}

func (p *Processor) anomaly(entry worklog.StoredEntry, reason string) {
	p.anomalies = append(p.anomalies, Anomaly{EntryID: entry.ID, Reason: reason})
	attrs := []any{
		slog.Int64("entry_id", entry.ID),
		slog.String("entry_type", entry.Type.String()),
		slog.String("entry_time", wire.FormatTimestamp(entry.Timestamp)),
		slog.String("employee", entry.Login),
		slog.Int64("device_id", entry.DeviceID),
		slog.String("reason", reason),
	}
	if entry.TaskID != nil {
		attrs = append(attrs, slog.Int64("task_id", *entry.TaskID))
	}
	p.logger.Warn("invalid log entry", attrs...)
}
