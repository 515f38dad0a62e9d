package core

// RoleAdmin is the only role allowed to delete services.
const RoleAdmin = "admin"

// CanDelete reports whether role may delete services. Any value other than
// exactly "admin", including the empty role, is denied.
func CanDelete(role string) bool {
	return role == RoleAdmin
}
