// Package entity defines the core business entities for the domain layer.
package entity

import (
	"strings"
	"time"
)

// User represents a household member known to the backend.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	HomeID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a new User. Unknown roles fall back to member.
func NewUser(email, name, passwordHash string, role UserRole, homeID int64) *User {
	if role != UserRoleAdmin {
		role = UserRoleMember
	}
	now := time.Now().UTC()
	return &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		HomeID:       homeID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// BelongsTo reports whether the user is a member of the home.
func (u *User) BelongsTo(homeID int64) bool {
	return u != nil && u.HomeID == homeID
}
