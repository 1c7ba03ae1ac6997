package model

import "time"

// Role is the authorization level derived from a user's account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks whether the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User is a portal account. PasswordHash is never serialized.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	CompanyName string    `json:"company_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	PasswordHash string `json:"-"`

	// Aggregate counts -- populated by admin queries, not stored.
	DocumentCount int `json:"document_count,omitempty"`
	TicketCount   int `json:"ticket_count,omitempty"`
}
