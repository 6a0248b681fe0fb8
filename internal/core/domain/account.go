package domain

import "time"

// Role is the closed set of account kinds.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ParseRole returns the Role named by s, or false if s names no role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleStudent, RoleRecruiter, RoleAdmin:
		return r, true
	}
	return "", false
}

// Account models a login identity. Identity fields are immutable once created.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the per-request caller, decoded once from the session token.
// A nil *Identity is an anonymous caller.
type Identity struct {
	AccountID string
	Email     string
	Role      Role
}

func (id *Identity) Authenticated() bool {
	return id != nil && id.AccountID != ""
}

func (id *Identity) IsStudent() bool {
	return id.Authenticated() && id.Role == RoleStudent
}

func (id *Identity) IsRecruiter() bool {
	return id.Authenticated() && id.Role == RoleRecruiter
}

func (id *Identity) IsAdmin() bool {
	return id.Authenticated() && id.Role == RoleAdmin
}
