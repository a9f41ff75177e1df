package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/admin"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/jwt"
)

type AuthServiceImpl struct {
	admin.UserRepository
	jwt.Service
}

func NewAuthService(userRepository admin.UserRepository, jwtService jwt.Service) admin.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
	}
}

// Login implements admin.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req admin.LoginRequest) (admin.TokenResponse, error) {
	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, admin.ErrUserNotFound) {
			return admin.TokenResponse{}, admin.ErrInvalidCredentials
		}
		return admin.TokenResponse{}, fmt.Errorf("failed to get admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return admin.TokenResponse{}, admin.ErrInvalidCredentials
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(userData.ID, userData.Email)
	if err != nil {
		return admin.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return admin.TokenResponse{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// EnsureUser implements admin.AuthService.
func (a *AuthServiceImpl) EnsureUser(ctx context.Context, email, password string) error {
	_, err := a.UserRepository.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, admin.ErrUserNotFound) {
		return fmt.Errorf("failed to get admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = a.UserRepository.Create(ctx, admin.User{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil && !errors.Is(err, admin.ErrEmailExists) {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}
