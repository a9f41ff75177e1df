package task

import "context"

type TaskService interface {
	Create(ctx context.Context, req CreateTaskRequest) (TaskResponse, error)
	Update(ctx context.Context, id int64, req UpdateTaskRequest) (TaskResponse, error)
	Get(ctx context.Context, id int64) (TaskResponse, error)
	List(ctx context.Context) ([]TaskResponse, error)

	Assign(ctx context.Context, login string, taskID int64) error
	SetAssignmentActive(ctx context.Context, login string, taskID int64, active bool) error
	AssignmentsForEmployee(ctx context.Context, login string) ([]AssignmentResponse, error)
}
