package task

import "time"

// Status is the lifecycle state of a task on the central station.
type Status int

const (
	StatusActive   Status = 0
	StatusFinished Status = 1
	StatusCanceled Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFinished:
		return "finished"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Task is owned by the central station. Description may span multiple
// lines; worker stations receive it line by line after the task header.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
}

// Assignment is the (employee, task) record tracking cumulative elapsed
// time and completion. Exactly one row exists per pair.
type Assignment struct {
	Employee  string
	TaskID    int64
	Active    bool
	Finished  bool
	TimeSpent time.Duration
}

// AssignmentStatus is the slice of an assignment the reconciliation engine
// mutates.
type AssignmentStatus struct {
	TimeSpent time.Duration
	Finished  bool
}

// AssignedTask is a task joined with the requesting employee's accumulated
// time, as streamed to a worker station.
type AssignedTask struct {
	Task
	SecondsSpent int64
}
