package user

type Permission string

const (
	// Approvals
	PermissionApprovalView   Permission = "approval.view"
	PermissionApprovalLevel1 Permission = "approval.level1"
	PermissionApprovalFinal  Permission = "approval.final"
	PermissionApprovalReject Permission = "approval.reject"

	// Notifications
	PermissionNotificationViewOwn   Permission = "notification.view_own"
	PermissionNotificationBroadcast Permission = "notification.broadcast"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionApprovalView,
		PermissionApprovalLevel1,
		PermissionApprovalFinal,
		PermissionApprovalReject,
		PermissionNotificationViewOwn,
		PermissionNotificationBroadcast,
	},
	RoleOrgSupervisor: {
		PermissionApprovalView,
		PermissionApprovalLevel1,
		PermissionApprovalFinal,
		PermissionApprovalReject,
		PermissionNotificationViewOwn,
	},
	RoleDivisionSupervisor: {
		PermissionApprovalView,
		PermissionApprovalLevel1,
		PermissionApprovalReject,
		PermissionNotificationViewOwn,
	},
	RoleEmployee: {
		PermissionNotificationViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// ApprovalCapability is the caller's approval tier.
type ApprovalCapability string

const (
	CapabilityNone         ApprovalCapability = "none"
	CapabilityDivision     ApprovalCapability = "division"
	CapabilityOrganization ApprovalCapability = "organization"
)

// CapabilityFor derives the approval tier from the role's permissions.
func CapabilityFor(role Role) ApprovalCapability {
	switch {
	case HasPermission(role, PermissionApprovalFinal):
		return CapabilityOrganization
	case HasPermission(role, PermissionApprovalLevel1):
		return CapabilityDivision
	default:
		return CapabilityNone
	}
}
