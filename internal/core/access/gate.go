// Package access decides what an authenticated caller may do. Every profile
// and resume operation passes through here before touching storage.
package access

import "github.com/placementcell/recruit-portal/internal/core/domain"

// Authorize allows id when it is authenticated and holds role.
// An anonymous caller gets domain.ErrUnauthenticated, a caller of another
// role gets domain.ErrForbidden.
func Authorize(id *domain.Identity, role domain.Role) error {
	if !id.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if id.Role != role {
		return domain.ErrForbidden
	}
	return nil
}

// AuthorizeAny is Authorize for a set of roles.
func AuthorizeAny(id *domain.Identity, roles ...domain.Role) error {
	if !id.Authenticated() {
		return domain.ErrUnauthenticated
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

// CanReadStudent reports whether id may read the profile and resume of the
// student owning ownerID: the owner itself or any recruiter.
func CanReadStudent(id *domain.Identity, ownerID string) bool {
	if !id.Authenticated() {
		return false
	}
	if id.IsStudent() && id.AccountID == ownerID {
		return true
	}
	return id.IsRecruiter()
}
