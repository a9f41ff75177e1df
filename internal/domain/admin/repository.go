package admin

import "context"

// UserRepository defines data access methods for admin users.
type UserRepository interface {
	// GetByEmail retrieves an admin user. Returns ErrUserNotFound when absent.
	GetByEmail(ctx context.Context, email string) (User, error)

	// Create inserts an admin user and returns it with the assigned id.
	Create(ctx context.Context, user User) (User, error)
}
