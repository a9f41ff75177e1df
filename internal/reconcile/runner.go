package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/database"
	"github.com/timeclock-hq/timeclock-backend-go/internal/repository/postgresql"
)

// Runner drives full load-reconcile-commit passes. Each pass runs under a
// per-employee lock and inside a single database transaction, so a batch
// is applied at most once and never partially committed.
type Runner struct {
	db      *database.DB
	worklog worklog.WorklogRepository
	tasks   task.TaskRepository
	locks   *employeeLocks
	logger  *slog.Logger
}

func NewRunner(db *database.DB, worklogRepo worklog.WorklogRepository, taskRepo task.TaskRepository, logger *slog.Logger) *Runner {
	return &Runner{
		db:      db,
		worklog: worklogRepo,
		tasks:   taskRepo,
		locks:   newEmployeeLocks(),
		logger:  logger,
	}
}

// Reconcile processes every unprocessed entry of one employee.
func (r *Runner) Reconcile(ctx context.Context, login string) error {
	unlock := r.locks.Lock(login)
	defer unlock()

	return postgresql.WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		entries, err := r.worklog.UnprocessedEntriesForEmployee(txCtx, login)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		processor := NewProcessor(login, txSource{tasks: r.tasks}, r.logger)
		for _, entry := range entries {
			if err := processor.Process(txCtx, entry); err != nil {
				return err
			}
		}

		result := processor.Result()
		for _, id := range result.ProcessedIDs {
			if err := r.worklog.MarkProcessed(txCtx, id); err != nil {
				return err
			}
		}
		for taskID, status := range result.Assignments {
			if err := r.tasks.UpdateAssignment(txCtx, login, taskID, status); err != nil {
				return fmt.Errorf("update assignment for task %d: %w", taskID, err)
			}
		}

		r.logger.Info("reconciliation pass complete",
			slog.String("employee", login),
			slog.Int("entries", len(entries)),
			slog.Int("processed", len(result.ProcessedIDs)),
			slog.Int("assignments_updated", len(result.Assignments)),
			slog.Int("anomalies", len(result.Anomalies)),
		)
		return nil
	})
}

// txSource narrows the task repository to the lookup the processor needs.
type txSource struct {
	tasks task.TaskRepository
}

func (s txSource) AssignmentStatus(ctx context.Context, login string, taskID int64) (*task.AssignmentStatus, error) {
	return s.tasks.AssignmentStatus(ctx, login, taskID)
}
