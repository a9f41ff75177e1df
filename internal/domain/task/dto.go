package task

import "github.com/timeclock-hq/timeclock-backend-go/internal/pkg/validator"

// CreateTaskRequest is the admin API payload for a new task.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r *CreateTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	}
	if len(r.Title) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateTaskRequest updates mutable task fields.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r *UpdateTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Title != nil && validator.IsEmpty(*r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not be empty",
		})
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, []string{"active", "finished", "canceled"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of active, finished, canceled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TaskResponse is the admin API view of a task.
type TaskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// AssignmentResponse is the admin API view of an assignment row.
type AssignmentResponse struct {
	Employee     string `json:"employee"`
	TaskID       int64  `json:"task_id"`
	Active       bool   `json:"active"`
	Finished     bool   `json:"finished"`
	SecondsSpent int64  `json:"seconds_spent"`
}

func ToResponse(t Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
	}
}

func ToAssignmentResponse(a Assignment) AssignmentResponse {
	return AssignmentResponse{
		Employee:     a.Employee,
		TaskID:       a.TaskID,
		Active:       a.Active,
		Finished:     a.Finished,
		SecondsSpent: int64(a.TimeSpent.Seconds()),
	}
}
