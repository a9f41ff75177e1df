package task

import (
	"context"
	"fmt"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/employee"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
)

type TaskServiceImpl struct {
	task.TaskRepository
	employee.EmployeeRepository
}

func NewTaskService(taskRepository task.TaskRepository, employeeRepository employee.EmployeeRepository) task.TaskService {
	return &TaskServiceImpl{
		TaskRepository:     taskRepository,
		EmployeeRepository: employeeRepository,
	}
}

// Create implements task.TaskService.
func (s *TaskServiceImpl) Create(ctx context.Context, req task.CreateTaskRequest) (task.TaskResponse, error) {
	created, err := s.TaskRepository.Create(ctx, task.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      task.StatusActive,
	})
	if err != nil {
		return task.TaskResponse{}, err
	}
	return task.ToResponse(created), nil
}

// Update implements task.TaskService.
func (s *TaskServiceImpl) Update(ctx context.Context, id int64, req task.UpdateTaskRequest) (task.TaskResponse, error) {
	t, err := s.TaskRepository.GetByID(ctx, id)
	if err != nil {
		return task.TaskResponse{}, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case "active":
			t.Status = task.StatusActive
		case "finished":
			t.Status = task.StatusFinished
		case "canceled":
			t.Status = task.StatusCanceled
		}
	}

	if err := s.TaskRepository.Update(ctx, t); err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to update task: %w", err)
	}
	return task.ToResponse(t), nil
}

// Get implements task.TaskService.
func (s *TaskServiceImpl) Get(ctx context.Context, id int64) (task.TaskResponse, error) {
	t, err := s.TaskRepository.GetByID(ctx, id)
	if err != nil {
		return task.TaskResponse{}, err
	}
	return task.ToResponse(t), nil
}

// List implements task.TaskService.
func (s *TaskServiceImpl) List(ctx context.Context) ([]task.TaskResponse, error) {
	tasks, err := s.TaskRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	responses := make([]task.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, task.ToResponse(t))
	}
	return responses, nil
}

// Assign implements task.TaskService.
func (s *TaskServiceImpl) Assign(ctx context.Context, login string, taskID int64) error {
	if _, err := s.EmployeeRepository.GetByLogin(ctx, login); err != nil {
		return err
	}
	if _, err := s.TaskRepository.GetByID(ctx, taskID); err != nil {
		return err
	}
	return s.TaskRepository.Assign(ctx, login, taskID)
}

// SetAssignmentActive implements task.TaskService.
func (s *TaskServiceImpl) SetAssignmentActive(ctx context.Context, login string, taskID int64, active bool) error {
	return s.TaskRepository.SetAssignmentActive(ctx, login, taskID, active)
}

// AssignmentsForEmployee implements task.TaskService.
func (s *TaskServiceImpl) AssignmentsForEmployee(ctx context.Context, login string) ([]task.AssignmentResponse, error) {
	if _, err := s.EmployeeRepository.GetByLogin(ctx, login); err != nil {
		return nil, err
	}
	assignments, err := s.TaskRepository.AssignmentsForEmployee(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	responses := make([]task.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, task.ToAssignmentResponse(a))
	}
	return responses, nil
}
