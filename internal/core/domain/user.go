package domain

import (
	"time"

	"github.com/neuroguard/patient-registry/internal/core/authz"
)

// User models an authenticated actor in the system.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         authz.Role `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Identity is the public slice of a User carried in tokens, session
// storage, and API responses. It never contains credentials.
type Identity struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     authz.Role `json:"role"`
}

// Identity derives the public identity of a user.
func (u *User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
