package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleBloodBank UserRole = "BLOODBANK"
	RoleUser      UserRole = "USER"
)

// User represents an application user stored in the users table.
// Blood bank operators share the users table; their bank profile row is
// keyed by the same identifier.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Role         UserRole   `db:"role" json:"role"`
	BloodGroup   *string    `db:"blood_group" json:"blood_group,omitempty"`
	City         string     `db:"city" json:"city"`
	Age          *int       `db:"age" json:"age,omitempty"`
	Gender       string     `db:"gender" json:"gender"`
	PhotoURL     string     `db:"photo_url" json:"photo_url"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display use.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
