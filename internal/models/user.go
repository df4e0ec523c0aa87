package models

// Role is the kind of actor making a change.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleHost   Role = "host"
	RoleAgency Role = "agency"
)

// Actor is the authenticated caller. Accounts themselves live in the
// external identity system; only the token claims are seen here.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
