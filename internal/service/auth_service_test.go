package service

import (
	"errors"
	"testing"
	"time"

	"flashdeck_backend/internal/config"
	"flashdeck_backend/internal/model"
	"flashdeck_backend/internal/repository"
	"flashdeck_backend/internal/util"

	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-that-is-long-enough-123"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestValidateRegistration(t *testing.T) {
	svc := newAuthService(newTestDB(t))

	tests := []struct {
		name      string
		username  string
		email     string
		password  string
		badFields []string
	}{
		{"all valid", "alice_1", "alice@example.com", "secret1", nil},
		{"missing everything", "", "", "", []string{"username", "email", "password"}},
		{"username too short", "ab", "alice@example.com", "secret1", []string{"username"}},
		{"username with spaces", "a lice", "alice@example.com", "secret1", []string{"username"}},
		{"bad email", "alice_1", "not-an-email", "secret1", []string{"email"}},
		{"short password", "alice_1", "alice@example.com", "12345", []string{"password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := svc.ValidateRegistration(tt.username, tt.email, tt.password)
			if len(tt.badFields) == 0 {
				if fields != nil {
					t.Errorf("ValidateRegistration() = %v, want nil", fields)
				}
				return
			}
			if len(fields) != len(tt.badFields) {
				t.Fatalf("got %d field errors %v, want %d", len(fields), fields, len(tt.badFields))
			}
			for _, f := range tt.badFields {
				if fields[f] == "" {
					t.Errorf("missing error for field %q", f)
				}
			}
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user := &model.User{Username: "alice_1", Email: "alice@example.com", Password: "secret1"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Password == "secret1" {
		t.Error("password must be stored hashed")
	}

	token, got, err := svc.Login("alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("logged in user id = %d, want %d", got.ID, user.ID)
	}

	claims, err := util.ParseJWT(token, "test-secret-that-is-long-enough-123")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	first := &model.User{Username: "alice_1", Email: "alice@example.com", Password: "secret1"}
	if err := svc.Register(first); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sameEmail := &model.User{Username: "bob_1", Email: "alice@example.com", Password: "secret1"}
	if err := svc.Register(sameEmail); !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("duplicate email error = %v, want %v", err, util.ErrEmailRegistered)
	}

	sameName := &model.User{Username: "alice_1", Email: "other@example.com", Password: "secret1"}
	if err := svc.Register(sameName); !errors.Is(err, util.ErrUsernameRegistered) {
		t.Errorf("duplicate username error = %v, want %v", err, util.ErrUsernameRegistered)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user := &model.User{Username: "alice_1", Email: "alice@example.com", Password: "secret1"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login("alice@example.com", "wrong"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want %v", err, util.ErrInvalidCredentials)
	}
	if _, _, err := svc.Login("nobody@example.com", "secret1"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want %v", err, util.ErrInvalidCredentials)
	}
}
