package domain

// Role names the three privileged capabilities. Role membership is
// self-referential: holders of RoleAdmin administer all roles, including
// granting RoleAdmin to others.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAttestor Role = "attestor"
	RolePauser   Role = "pauser"
)

// IsValid checks if the role is one of the supported values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAttestor, RolePauser:
		return true
	}
	return false
}

// String returns the string representation.
func (r Role) String() string { return string(r) }
