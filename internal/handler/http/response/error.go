package response

import (
	"errors"
	"net/http"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/admin"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/employee"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Admin domain errors
	case errors.Is(err, admin.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, admin.ErrUserNotFound):
		NotFound(w, "Admin user not found")
	case errors.Is(err, admin.ErrEmailExists):
		Conflict(w, "Email already registered")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrLoginExists):
		Conflict(w, "Login already taken")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Conflict(w, "Employee is deactivated")

	// Task domain errors
	case errors.Is(err, task.ErrTaskNotFound):
		NotFound(w, "Task not found")
	case errors.Is(err, task.ErrTitleExists):
		Conflict(w, "Task title already taken")
	case errors.Is(err, task.ErrAssignmentNotFound):
		NotFound(w, "Assignment not found")
	case errors.Is(err, task.ErrAlreadyAssigned):
		Conflict(w, "Employee already assigned to this task")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
