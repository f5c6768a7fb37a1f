package auth

// Role represents a user role.
type Role string

const (
	RoleReader     Role = "reader"
	RoleSuperadmin Role = "superadmin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleReader, RoleSuperadmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleReader:
		return 1
	case RoleSuperadmin:
		return 2
	default:
		return 0
	}
}
