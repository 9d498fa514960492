package user

import (
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrProfileNotFound = errors.New("user not found")
	ErrHandleRequired  = errors.New("wagering platform username is required to join giveaways")
)

// User is the read-only identity profile consumed by the lifecycle engine.
// Registration and credentials live outside this service.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// ExternalHandle is the user's name on the wagering platform checked for eligibility.
	ExternalHandle string    `json:"external_handle"`
	Role           string    `json:"role"` // allowed: "user", "admin"
	CreatedAt      time.Time `json:"created_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
