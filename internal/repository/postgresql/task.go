package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/database"
)

type taskRepository struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.TaskRepository {
	return &taskRepository{db: db}
}

// Create implements task.TaskRepository.
func (r *taskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO tasks (title, description, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := q.QueryRow(ctx, query, t.Title, t.Description, int(t.Status)).Scan(&t.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return task.Task{}, task.ErrTitleExists
		}
		return task.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	return t, nil
}

// GetByID implements task.TaskRepository.
func (r *taskRepository) GetByID(ctx context.Context, id int64) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, title, description, status
		FROM tasks
		WHERE id = $1
	`

	var t task.Task
	var status int
	err := q.QueryRow(ctx, query, id).Scan(&t.ID, &t.Title, &t.Description, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrTaskNotFound
		}
		return task.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	t.Status = task.Status(status)

	return t, nil
}

// List implements task.TaskRepository.
func (r *taskRepository) List(ctx context.Context) ([]task.Task, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, title, description, status FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var status int
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Status = task.Status(status)
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Update implements task.TaskRepository.
func (r *taskRepository) Update(ctx context.Context, t task.Task) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, t.ID, t.Title, t.Description, int(t.Status))
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}

	return nil
}

// ActiveTasksForEmployee implements task.TaskRepository.
func (r *taskRepository) ActiveTasksForEmployee(ctx context.Context, login string) ([]task.AssignedTask, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT t.id, t.title, t.description, t.status, et.time_spent
		FROM employee_tasks AS et
		JOIN tasks AS t ON et.task = t.id
		WHERE et.employee = $1
		  AND t.status = 0
		  AND et.assignment_active
		  AND NOT et.finished
		ORDER BY t.id
	`

	rows, err := q.Query(ctx, query, login)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for employee: %w", err)
	}
	defer rows.Close()

	var tasks []task.AssignedTask
	for rows.Next() {
		var at task.AssignedTask
		var status int
		if err := rows.Scan(&at.ID, &at.Title, &at.Description, &status, &at.SecondsSpent); err != nil {
			return nil, fmt.Errorf("failed to scan assigned task: %w", err)
		}
		at.Status = task.Status(status)
		tasks = append(tasks, at)
	}

	return tasks, rows.Err()
}

// Assign implements task.TaskRepository.
func (r *taskRepository) Assign(ctx context.Context, login string, taskID int64) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_tasks (employee, task)
		VALUES ($1, $2)
	`

	_, err := q.Exec(ctx, query, login, taskID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return task.ErrAlreadyAssigned
			case "23503":
				return task.ErrTaskNotFound
			}
		}
		return fmt.Errorf("failed to assign task: %w", err)
	}

	return nil
}

// SetAssignmentActive implements task.TaskRepository.
func (r *taskRepository) SetAssignmentActive(ctx context.Context, login string, taskID int64, active bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_tasks
		SET assignment_active = $3
		WHERE employee = $1 AND task = $2
	`

	tag, err := q.Exec(ctx, query, login, taskID, active)
	if err != nil {
		return fmt.Errorf("failed to set assignment active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrAssignmentNotFound
	}

	return nil
}

// AssignmentStatus implements task.TaskRepository.
func (r *taskRepository) AssignmentStatus(ctx context.Context, login string, taskID int64) (*task.AssignmentStatus, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT time_spent, finished
		FROM employee_tasks
		WHERE employee = $1 AND task = $2
	`

	var spentSeconds int64
	var finished bool
	err := q.QueryRow(ctx, query, login, taskID).Scan(&spentSeconds, &finished)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // never assigned
		}
		return nil, fmt.Errorf("failed to get assignment status: %w", err)
	}

	return &task.AssignmentStatus{
		TimeSpent: time.Duration(spentSeconds) * time.Second,
		Finished:  finished,
	}, nil
}

// UpdateAssignment implements task.TaskRepository.
func (r *taskRepository) UpdateAssignment(ctx context.Context, login string, taskID int64, status task.AssignmentStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_tasks
		SET time_spent = $3, finished = $4
		WHERE employee = $1 AND task = $2
	`

	tag, err := q.Exec(ctx, query, login, taskID, int64(status.TimeSpent.Seconds()), status.Finished)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrAssignmentNotFound
	}

	return nil
}

// AssignmentsForEmployee implements task.TaskRepository.
func (r *taskRepository) AssignmentsForEmployee(ctx context.Context, login string) ([]task.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee, task, assignment_active, finished, time_spent
		FROM employee_tasks
		WHERE employee = $1
		ORDER BY task
	`

	rows, err := q.Query(ctx, query, login)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []task.Assignment
	for rows.Next() {
		var a task.Assignment
		var spentSeconds int64
		if err := rows.Scan(&a.Employee, &a.TaskID, &a.Active, &a.Finished, &spentSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.TimeSpent = time.Duration(spentSeconds) * time.Second
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
