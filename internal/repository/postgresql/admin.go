package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/admin"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/database"
)

type adminUserRepository struct {
	db *database.DB
}

func NewAdminUserRepository(db *database.DB) admin.UserRepository {
	return &adminUserRepository{db: db}
}

// GetByEmail implements admin.UserRepository.
func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (admin.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, email, password_hash, created_at
		FROM admin_users
		WHERE email = $1
	`

	var user admin.User
	err := q.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return admin.User{}, admin.ErrUserNotFound
		}
		return admin.User{}, fmt.Errorf("failed to get admin user: %w", err)
	}

	return user, nil
}

// Create implements admin.UserRepository.
func (r *adminUserRepository) Create(ctx context.Context, user admin.User) (admin.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO admin_users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return admin.User{}, admin.ErrEmailExists
		}
		return admin.User{}, fmt.Errorf("failed to create admin user: %w", err)
	}

	return user, nil
}
