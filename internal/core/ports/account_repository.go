package ports

import (
	"context"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// AccountRepository defines persistence for login accounts.
type AccountRepository interface {
	// Create stores a new account. A unique-key clash returns a
	// *domain.DuplicateKeyError naming the clashing field.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}
