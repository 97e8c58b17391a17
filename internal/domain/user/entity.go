package user

type Role string

const (
	RoleAdmin              Role = "admin"               // HR administrator - full access
	RoleOrgSupervisor      Role = "org_supervisor"      // Final approval across the organization
	RoleDivisionSupervisor Role = "division_supervisor" // Level 1 approval inside a division
	RoleEmployee           Role = "employee"            // Regular employee
)

// Session is the verified caller identity passed down explicitly from the
// auth middleware. Token is the raw bearer token forwarded to the backend.
type Session struct {
	UserID     string
	Email      string
	DivisionID *string
	Role       Role
	Token      string
}

// IsAdmin checks if the caller is an HR administrator
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Capability returns the approval tier the caller's role grants
func (s Session) Capability() ApprovalCapability {
	return CapabilityFor(s.Role)
}

// IsValid reports whether r is a role the console knows
func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}
