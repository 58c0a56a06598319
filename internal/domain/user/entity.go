// Package user contains the user identity and role model.
package user

import (
	"strings"

	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

// Role defines what a user is allowed to do in the dashboard.
type Role string

const (
	// RoleStudent can view and act on their own learning data.
	RoleStudent Role = "student"
	// RoleTeacher can additionally manage students, assessments and grading.
	RoleTeacher Role = "teacher"
	// RoleAdmin is a superset role: every teacher-gated capability is
	// available to an admin, in addition to the student-gated ones.
	RoleAdmin Role = "admin"
)

// IsValid checks that the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanTeach reports whether the role passes teacher-gated checks.
func (r Role) CanTeach() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// CanStudy reports whether the role passes student-gated checks.
func (r Role) CanStudy() bool {
	return r == RoleStudent || r == RoleAdmin
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a stored role indicator, defaulting to student for
// anything unrecognised.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleTeacher:
		return RoleTeacher
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleStudent
	}
}

// User is the current dashboard identity.
type User struct {
	ID     string
	Name   string
	Email  string
	Role   Role
	Avatar string // initials, e.g. "AR"
}

// Validate checks the structural invariants of the user.
func (u *User) Validate() error {
	if u.ID == "" {
		return shared.ErrInvalidID
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return shared.WrapError("user", "Validate", shared.ErrInvalidInput, "invalid email", nil)
	}
	if !u.Role.IsValid() {
		return shared.ErrInvalidRole
	}
	return nil
}

// Initials derives avatar initials from the user's name when no explicit
// avatar is set.
func (u *User) Initials() string {
	if u.Avatar != "" {
		return u.Avatar
	}
	parts := strings.Fields(u.Name)
	initials := ""
	for _, p := range parts {
		initials += strings.ToUpper(p[:1])
		if len(initials) == 2 {
			break
		}
	}
	return initials
}
