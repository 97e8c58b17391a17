package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrSessionMissing          = errors.New("session missing from request context")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrUnknownRole             = errors.New("unknown role")
)
