// Package entity defines the core business entities for the domain layer.
package entity

import "time"

// UserRole represents the role of a user within the household app.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// Session represents an authenticated user session.
type Session struct {
	ID          string
	UserID      int64
	UserName    string
	Email       string
	Role        UserRole
	LoggedIn    bool
	RemoteToken string // bearer token for the household backend
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// IsActive reports whether the session is logged in and not expired.
func (s *Session) IsActive(now time.Time) bool {
	if s == nil || !s.LoggedIn {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// IsElevated reports whether the session may act on lists it does not own.
func (s *Session) IsElevated() bool {
	return s != nil && s.Role == UserRoleAdmin
}

// CanModify reports whether the session has rights over the list.
func (s *Session) CanModify(list *ShoppingList) bool {
	if s == nil || list == nil {
		return false
	}
	return list.OwnerID == s.UserID || s.IsElevated()
}
