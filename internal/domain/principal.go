package domain

// Role of the acting user, supplied by the identity collaborator
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Principal is the current user
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin returns true for administrators
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManage returns true if the principal owns the record or is an administrator
func (p Principal) CanManage(ownerID int64) bool {
	return p.UserID == ownerID || p.IsAdmin()
}

// ParseRole converts a header value into a role; unknown values are members
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}
