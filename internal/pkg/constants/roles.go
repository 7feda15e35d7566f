package constants

const (
	RoleUser    = "user"
	RoleRealtor = "realtor"
	RoleAdmin   = "admin"
)

// ValidRoles is the set of allowed values for the user role column.
var ValidRoles = []string{RoleUser, RoleRealtor, RoleAdmin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
