package ports

import (
	"context"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// ProfileRepository persists student and recruiter profiles keyed by account ID.
type ProfileRepository interface {
	// FindStudent returns domain.ErrNotFound when no profile exists yet.
	FindStudent(ctx context.Context, accountID string) (*domain.StudentProfile, error)
	FindRecruiter(ctx context.Context, accountID string) (*domain.RecruiterProfile, error)

	// PhoneInUse reports whether a profile of the given role other than
	// accountID already holds phone.
	PhoneInUse(ctx context.Context, role domain.Role, accountID, phone string) (bool, error)

	// UpdateStudent applies u to the profile, creating it when missing.
	// A unique-index clash returns an error matching domain.ErrConflict.
	UpdateStudent(ctx context.Context, accountID string, u domain.StudentUpdate) error
	UpdateRecruiter(ctx context.Context, accountID string, u domain.RecruiterUpdate) error
}
