package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
)

func newTestAuthService(repo *stubAccountRepo, limiter *stubLimiter, audit *recordingAudit) *AuthService {
	return NewAuthService(repo, limiter, audit, AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour}, zerolog.Nop())
}

func validRegistration() ports.RegisterInput {
	return ports.RegisterInput{
		Username:        "alice",
		Email:           "Alice@Example.com",
		Phone:           "9876543210",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		Role:            "student",
		ClientIP:        "10.0.0.1",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	audit := &recordingAudit{}
	svc := newTestAuthService(repo, newStubLimiter(5), audit)

	account, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", account.Email)
	}
	if account.Phone != "+919876543210" {
		t.Fatalf("expected prefixed phone, got %q", account.Phone)
	}
	if account.Role != domain.RoleStudent {
		t.Fatalf("unexpected role: %s", account.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("Secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if kinds := audit.kinds(); len(kinds) != 1 || kinds[0] != domain.AuditRegisterSuccess {
		t.Fatalf("unexpected audit events: %v", kinds)
	}
}

func TestAuthService_Register_ValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ports.RegisterInput)
		want   string
	}{
		{"missing username", func(in *ports.RegisterInput) { in.Username = "" }, "Username is required."},
		{"bad email", func(in *ports.RegisterInput) { in.Email = "nope" }, "Please enter a valid email address."},
		{"bad phone", func(in *ports.RegisterInput) { in.Phone = "12345" }, "Please enter a valid 10-digit phone number."},
		{"missing confirm", func(in *ports.RegisterInput) { in.ConfirmPassword = "" }, "Password confirmation is required."},
		{"mismatch", func(in *ports.RegisterInput) { in.ConfirmPassword = "Secret124" }, "Passwords do not match."},
		{"weak", func(in *ports.RegisterInput) { in.Password, in.ConfirmPassword = "weakpass", "weakpass" },
			"Password must be at least 8 characters long, contain an uppercase letter, a lowercase letter, and a digit."},
		{"bad role", func(in *ports.RegisterInput) { in.Role = "admin" }, "Role must be one of: student recruiter."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubAccountRepo()
			audit := &recordingAudit{}
			svc := newTestAuthService(repo, newStubLimiter(5), audit)

			in := validRegistration()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if got := domain.Message(err); got != tt.want {
				t.Fatalf("message = %q, want %q", got, tt.want)
			}
			if len(repo.accounts) != 0 {
				t.Fatalf("no account should be stored")
			}
			if kinds := audit.kinds(); len(kinds) != 1 || kinds[0] != domain.AuditRegisterError {
				t.Fatalf("unexpected audit events: %v", kinds)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubAccountRepo()
	audit := &recordingAudit{}
	svc := newTestAuthService(repo, newStubLimiter(5), audit)

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in := validRegistration()
	in.Username = "alice2"
	in.Phone = "9000000000"
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if got := domain.Message(err); got != "An account with this email already exists." {
		t.Fatalf("unexpected message %q", got)
	}
	if kinds := audit.kinds(); len(kinds) != 2 || kinds[1] != domain.AuditRegisterFail {
		t.Fatalf("unexpected audit events: %v", kinds)
	}
}

func TestAuthService_Register_StorageError(t *testing.T) {
	repo := newStubAccountRepo()
	repo.err = errBoom
	audit := &recordingAudit{}
	svc := newTestAuthService(repo, newStubLimiter(5), audit)

	_, err := svc.Register(context.Background(), validRegistration())
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if kinds := audit.kinds(); len(kinds) != 1 || kinds[0] != domain.AuditRegisterError {
		t.Fatalf("unexpected audit events: %v", kinds)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubAccountRepo()
	limiter := newStubLimiter(5)
	svc := newTestAuthService(repo, limiter, &recordingAudit{})

	registered, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	limiter.attempts["10.0.0.1"] = 3

	token, account, err := svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: "Secret123", ClientIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if account.ID != registered.ID {
		t.Fatalf("unexpected account: %+v", account)
	}
	if _, ok := limiter.attempts["10.0.0.1"]; ok {
		t.Fatalf("successful login should clear attempts")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != string(domain.RoleStudent) {
		t.Fatalf("expected role student, got %v", claims["role"])
	}
	if claims["sub"] != registered.ID {
		t.Fatalf("expected sub %s, got %v", registered.ID, claims["sub"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubAccountRepo()
	limiter := newStubLimiter(5)
	svc := newTestAuthService(repo, limiter, &recordingAudit{})

	_, _ = svc.Register(context.Background(), validRegistration())
	_, _, err := svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: "Wrong1234", ClientIP: "ip"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if domain.Message(err) != "Incorrect password." {
		t.Fatalf("unexpected message %q", domain.Message(err))
	}
	if limiter.attempts["ip"] != 1 {
		t.Fatalf("failed attempt should be recorded, got %d", limiter.attempts["ip"])
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc := newTestAuthService(newStubAccountRepo(), newStubLimiter(5), &recordingAudit{})

	_, _, err := svc.Login(context.Background(), ports.LoginInput{Email: "ghost@example.com", Password: "pass", ClientIP: "ip"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	limiter := newStubLimiter(2)
	audit := &recordingAudit{}
	svc := newTestAuthService(newStubAccountRepo(), limiter, audit)

	for i := 0; i < 2; i++ {
		_, _, _ = svc.Login(context.Background(), ports.LoginInput{Email: "ghost@example.com", Password: "x", ClientIP: "ip"})
	}
	_, _, err := svc.Login(context.Background(), ports.LoginInput{Email: "ghost@example.com", Password: "x", ClientIP: "ip"})

	var terr *domain.ThrottledError
	if !errors.As(err, &terr) {
		t.Fatalf("expected ThrottledError, got %v", err)
	}
	if terr.RetryAfter != 42 {
		t.Fatalf("unexpected retry after %d", terr.RetryAfter)
	}
	if !errors.Is(err, domain.ErrThrottled) {
		t.Fatalf("ThrottledError should match ErrThrottled")
	}
	if len(audit.kinds()) != 3 {
		t.Fatalf("expected one audit event per attempt, got %v", audit.kinds())
	}
}

func TestAuthService_Login_LimiterDownFailsOpen(t *testing.T) {
	repo := newStubAccountRepo()
	limiter := newStubLimiter(5)
	svc := newTestAuthService(repo, limiter, &recordingAudit{})
	_, _ = svc.Register(context.Background(), validRegistration())

	limiter.err = errBoom
	if _, _, err := svc.Login(context.Background(), ports.LoginInput{Email: "alice@example.com", Password: "Secret123", ClientIP: "ip"}); err != nil {
		t.Fatalf("login should proceed when limiter fails: %v", err)
	}
}
