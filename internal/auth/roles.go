package auth

// Role represents a campus user role. The first four mirror the fee
// multiplier roles; admin exists for back-office operations only.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleStaff   Role = "staff"
	RoleVisitor Role = "visitor"
	RoleAdmin   Role = "admin"
)

// Level is the access level a request requires.
type Level int

const (
	LevelUser Level = iota + 1
	LevelStaff
	LevelAdmin
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleStudent, RoleFaculty, RoleStaff, RoleVisitor, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when the role satisfies the required level.
func RoleAtLeast(role Role, required Level) bool {
	return roleLevel(role) >= required
}

func roleLevel(role Role) Level {
	switch role {
	case RoleStudent, RoleFaculty, RoleVisitor:
		return LevelUser
	case RoleStaff:
		return LevelStaff
	case RoleAdmin:
		return LevelAdmin
	default:
		return 0
	}
}
