package domain

type Role string

const (
	RoleOwner    Role = "owner"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// CanCommitConfig reports whether the role may apply a config change
// immediately, without going through the pending-approval queue.
func CanCommitConfig(role Role) bool {
	return role == RoleOwner || role == RoleHR
}

// CanProposeConfig reports whether the role may at least queue a config
// change for approval.
func CanProposeConfig(role Role) bool {
	return role == RoleManager || CanCommitConfig(role)
}

// CanApproveChange reports whether the role may approve or reject a
// pending formula change.
func CanApproveChange(role Role) bool {
	return role == RoleOwner || role == RoleHR
}

// CanResolveFlag reports whether the role may resolve a flight-risk flag.
func CanResolveFlag(role Role) bool {
	return role == RoleOwner || role == RoleHR
}
