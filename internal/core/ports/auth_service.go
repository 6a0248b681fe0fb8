package ports

import (
	"context"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Role            string
	ClientIP        string
}

// LoginInput is the raw login form. ClientIP keys the attempt limiter.
type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, in LoginInput) (string, *domain.Account, error)
}

// AttemptLimiter tracks failed login attempts per key inside a sliding window.
type AttemptLimiter interface {
	// Allow returns zero when another attempt is permitted, otherwise the
	// number of seconds until the oldest attempt in the window expires.
	Allow(ctx context.Context, key string) (retryAfter int, err error)
	Record(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
