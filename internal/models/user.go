package models

import (
	"time"
)

// Role is a user's access level
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a user in the system
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      Role      `json:"role" db:"role"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleAdmin: true,
	RoleUser:  true,
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal may use administrative endpoints
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
