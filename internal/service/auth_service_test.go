package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"memestash/api/internal/apperr"
	"memestash/api/internal/security"
)

func newAuthFixture() (*AuthService, *fakeUserCatalog) {
	users := &fakeUserCatalog{}
	svc := NewAuthService(users, "test-secret", time.Hour, zerolog.Nop())
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "Alice@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lowercased", reg.User.Email)
	}
	if reg.Token == "" {
		t.Error("no token issued on registration")
	}

	claims, err := security.ParseAccessToken(reg.Token, "test-secret")
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != reg.User.ID || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}

	login, err := svc.Login(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Error("login resolved a different user")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "a@b.c", "pw"); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Errorf("err = %v, want Validation", err)
	}

	if _, err := svc.Register(ctx, "bob", "bob@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	// Same username, different email: still rejected.
	if _, err := svc.Register(ctx, "bob", "other@example.com", "pw"); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Errorf("duplicate username err = %v, want Validation", err)
	}
	if _, err := svc.Register(ctx, "robert", "bob@example.com", "pw"); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Errorf("duplicate email err = %v, want Validation", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol", "carol@example.com", "correct-pw"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, "carol", "wrong-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v", err)
	}

	users.users[0].IsActive = false
	if _, err := svc.Login(ctx, "carol", "correct-pw"); !errors.Is(err, ErrAccountDeactivated) {
		t.Errorf("inactive account err = %v", err)
	}
}
