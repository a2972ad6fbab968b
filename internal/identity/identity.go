package identity

// Roles issued by the external identity provider and carried in JWT claims.
const (
	RoleClient     = "client"
	RoleTechnician = "technician"
	RoleDriver     = "driver"
	RoleAdmin      = "admin"
)

// Actor identifies the caller of a core operation. The HTTP layer builds it
// from the verified token; tests build it directly.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
