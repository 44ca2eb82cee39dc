package auth

import "errors"

var ErrInvalidRole = errors.New("invalid role")

// Role is the closed set of actor roles.
type Role string

const (
	RoleUser    Role = "USER"
	RoleTrainer Role = "TRAINER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole maps a role literal onto the closed set. Unknown literals are a
// caller error, never a panic.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleTrainer, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// IsOwnerOrElevated reports whether an actor may act on resources owned by
// targetUserID: admins always may, everyone else only on their own.
func IsOwnerOrElevated(targetUserID, actorUserID int, actorRole Role) bool {
	if actorRole == RoleAdmin {
		return true
	}
	return actorUserID == targetUserID
}

// CanElevateRole gates promotion to ADMIN behind the configured creation
// secret. Non-admin roles need no secret. An empty configured secret means
// elevation is disabled entirely.
func CanElevateRole(requested Role, presented, configured string) bool {
	if requested != RoleAdmin {
		return true
	}
	return configured != "" && presented == configured
}
