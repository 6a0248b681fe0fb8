package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
	"github.com/placementcell/recruit-portal/internal/pkg/metrics"
	"github.com/placementcell/recruit-portal/internal/pkg/validation"
)

// AuthConfig carries the token and phone settings of AuthService.
type AuthConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	CountryCode string
}

// AuthService implements registration and login.
type AuthService struct {
	repo     ports.AccountRepository
	limiter  ports.AttemptLimiter
	audit    ports.AuditSink
	validate *validation.Validator
	cfg      AuthConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	repo ports.AccountRepository,
	limiter ports.AttemptLimiter,
	audit ports.AuditSink,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = DefaultCountryCode
	}
	return &AuthService{
		repo:     repo,
		limiter:  limiter,
		audit:    audit,
		validate: validation.New(),
		cfg:      cfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type registerForm struct {
	Username        string `label:"Username" validate:"required"`
	Email           string `label:"Email" validate:"required,emailaddr"`
	Phone           string `label:"Phone number" validate:"required,phone10"`
	Password        string `label:"Password" validate:"required"`
	ConfirmPassword string `label:"Password confirmation" validate:"required,eqfield=Password,strongpw"`
	Role            string `label:"Role" validate:"required,oneof=student recruiter"`
}

type loginForm struct {
	Email    string `label:"Email" validate:"required,emailaddr"`
	Password string `label:"Password" validate:"required"`
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	form := registerForm{
		Username:        strings.TrimSpace(in.Username),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           strings.TrimSpace(in.Phone),
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		Role:            strings.ToLower(strings.TrimSpace(in.Role)),
	}
	if err := s.validate.First(&form); err != nil {
		s.audit.Log(domain.AuditRegisterError, domain.Message(err), form.Email, in.ClientIP)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		s.audit.Log(domain.AuditRegisterError, err.Error(), form.Email, in.ClientIP)
		return nil, err
	}

	role, _ := domain.ParseRole(form.Role)
	account := &domain.Account{
		Username:     form.Username,
		Email:        form.Email,
		Phone:        s.cfg.CountryCode + form.Phone,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		var dup *domain.DuplicateKeyError
		if errors.As(err, &dup) {
			msg := duplicateMessage(dup.Field)
			s.audit.Log(domain.AuditRegisterFail, msg, form.Email, in.ClientIP)
			return nil, domain.Conflict(msg)
		}
		s.log.Error().Err(err).Str("email", form.Email).Msg("register failed")
		s.audit.Log(domain.AuditRegisterError, err.Error(), form.Email, in.ClientIP)
		return nil, domain.Storage("Registration failed. Please try again.", err)
	}

	s.audit.Log(domain.AuditRegisterSuccess, "User registered", created.Email, in.ClientIP)
	s.log.Info().Str("account_id", created.ID).Str("role", string(created.Role)).Msg("account registered")
	return created, nil
}

func duplicateMessage(field string) string {
	switch field {
	case "email":
		return "An account with this email already exists."
	case "username":
		return "This username is already taken."
	case "phone":
		return "This phone number is already registered."
	default:
		return "Registration failed: duplicate entry."
	}
}

// Login checks the attempt limiter, then credentials. Every failure is
// recorded against in.ClientIP and a success clears the record.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (string, *domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	key := in.ClientIP

	retry, err := s.limiter.Allow(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("login limiter unavailable, allowing attempt")
	} else if retry > 0 {
		metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		terr := &domain.ThrottledError{RetryAfter: retry}
		s.audit.Log(domain.AuditLoginFail, terr.Error(), email, in.ClientIP)
		return "", nil, terr
	}

	account, err := s.authenticate(ctx, loginForm{Email: email, Password: in.Password})
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("fail").Inc()
		if rerr := s.limiter.Record(ctx, key); rerr != nil {
			s.log.Warn().Err(rerr).Str("key", key).Msg("failed to record login attempt")
		}
		s.audit.Log(domain.AuditLoginFail, domain.Message(err), email, in.ClientIP)
		return "", nil, err
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to reset login attempts")
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.audit.Log(domain.AuditLoginSuccess, "User logged in", account.Email, in.ClientIP)
	return token, account, nil
}

func (s *AuthService) authenticate(ctx context.Context, form loginForm) (*domain.Account, error) {
	if err := s.validate.First(&form); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No account found with this email.")
		}
		return nil, domain.Storage("Login failed. Please try again.", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(form.Password)) != nil {
		return nil, &domain.Error{Kind: domain.ErrInvalidCredentials, Message: "Incorrect password."}
	}
	return account, nil
}

func (s *AuthService) generateToken(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"role":  string(account.Role),
		"exp":   s.now().Add(s.cfg.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}
