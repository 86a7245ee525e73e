package model

import (
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleAdmin           = "admin"
	RoleDoctor          = "doctor"
	RoleNurse           = "nurse"
	RoleReceptionist    = "receptionist"
	RoleBilling         = "billing"
	RolePracticeManager = "practice_manager"
	RoleViewer          = "viewer"
)

// HealthcareRoles may register patients.
var HealthcareRoles = []string{
	RoleAdmin,
	RoleDoctor,
	RoleNurse,
	RoleReceptionist,
	RoleBilling,
	RolePracticeManager,
}

// User is an authentication identity.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty" db:"last_sign_in_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Profile is the role-bearing record attached to a user.
type Profile struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasAnyRole reports whether the profile role is one of roles.
func (p *Profile) HasAnyRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
