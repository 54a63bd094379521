package identity

import "time"

// Roles assignable at registration. Admin registration additionally requires
// the master key configured for the deployment.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a registered wallet owner.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"passwordHash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credentials request structure.
type Credentials struct {
	Username string
	Password string
}
