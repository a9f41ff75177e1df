package admin

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// EnsureUser creates the admin account when it does not exist yet.
	// Used to bootstrap the first operator from configuration.
	EnsureUser(ctx context.Context, email, password string) error
}
