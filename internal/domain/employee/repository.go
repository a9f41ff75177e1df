package employee

import "context"

// EmployeeRepository defines data access methods for employee records.
type EmployeeRepository interface {
	// GetByLogin retrieves a single employee by login.
	// Returns ErrEmployeeNotFound when no record matches.
	GetByLogin(ctx context.Context, login string) (Employee, error)

	// Create inserts a new employee record.
	Create(ctx context.Context, emp Employee) error

	// Update overwrites password, name and active flag for a login.
	Update(ctx context.Context, emp Employee) error

	// List retrieves all employees ordered by login.
	List(ctx context.Context) ([]Employee, error)

	// SetActive flips the active flag without touching other fields.
	SetActive(ctx context.Context, login string, active bool) error
}
