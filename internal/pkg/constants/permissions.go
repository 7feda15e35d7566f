package constants

const (
	CreateListing   = "create_listing"
	ViewOwnListings = "view_own_listings"
	CreateRealtor   = "create_realtor"
	ManageUsers     = "manage_users"
	ViewStats       = "view_stats"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
// Ownership checks (owner-or-admin on a specific resource) live in the
// services; this table only gates role-level capabilities.
var PermissionRoles = map[string][]string{
	CreateListing:   {RoleRealtor, RoleAdmin},
	ViewOwnListings: {RoleRealtor, RoleAdmin},
	CreateRealtor:   {RoleAdmin},
	ManageUsers:     {RoleAdmin},
	ViewStats:       {RoleAdmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
