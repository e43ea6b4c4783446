package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"memestash/api/internal/apperr"
	"memestash/api/internal/ids"
	"memestash/api/internal/models"
	"memestash/api/internal/repository"
	"memestash/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
)

type AuthService struct {
	users     UserCatalog
	jwtSecret string
	jwtTTL    time.Duration
	log       zerolog.Logger
}

func NewAuthService(users UserCatalog, jwtSecret string, jwtTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		log:       log,
	}
}

type AuthResult struct {
	User  models.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return AuthResult{}, apperr.Validation("Username, email and password are required")
	}

	if _, err := s.users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return AuthResult{}, apperr.Validation("Username or email already in use")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return AuthResult{}, apperr.Validation("Username or email already in use")
		}
		return AuthResult{}, err
	}

	token, err := security.GenerateAccessToken(s.jwtSecret, user.ID, user.Username, s.jwtTTL)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if !user.IsActive {
		return AuthResult{}, ErrAccountDeactivated
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := security.GenerateAccessToken(s.jwtSecret, user.ID, user.Username, s.jwtTTL)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user, Token: token}, nil
}
