package task

import "context"

// TaskRepository defines data access methods for tasks and assignments.
type TaskRepository interface {
	// Create inserts a task and returns it with the assigned id.
	Create(ctx context.Context, t Task) (Task, error)

	// GetByID retrieves a task. Returns ErrTaskNotFound when absent.
	GetByID(ctx context.Context, id int64) (Task, error)

	// List retrieves all tasks ordered by id.
	List(ctx context.Context) ([]Task, error)

	// Update overwrites title, description and status.
	Update(ctx context.Context, t Task) error

	// ActiveTasksForEmployee retrieves every active task whose assignment
	// to the employee is active and not finished, with accumulated time.
	ActiveTasksForEmployee(ctx context.Context, login string) ([]AssignedTask, error)

	// Assign creates the (employee, task) assignment row.
	Assign(ctx context.Context, login string, taskID int64) error

	// SetAssignmentActive flips the assignment-active flag.
	SetAssignmentActive(ctx context.Context, login string, taskID int64, active bool) error

	// AssignmentStatus retrieves the mutable slice of an assignment.
	// Returns nil when the employee was never assigned to the task.
	AssignmentStatus(ctx context.Context, login string, taskID int64) (*AssignmentStatus, error)

	// UpdateAssignment persists a reconciled (elapsed, finished) pair.
	UpdateAssignment(ctx context.Context, login string, taskID int64, status AssignmentStatus) error

	// AssignmentsForEmployee retrieves all assignment rows for a login.
	AssignmentsForEmployee(ctx context.Context, login string) ([]Assignment, error)
}
