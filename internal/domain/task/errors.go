package task

import "errors"

// Task domain errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleExists        = errors.New("task title already exists")
	ErrAssignmentNotFound = errors.New("employee was never assigned to this task")
	ErrAlreadyAssigned    = errors.New("employee is already assigned to this task")
)
