// Package authz holds the single role-to-permission table for the
// registry. Both enforcement points consume it: the HTTP middleware
// (the security boundary) and the client-side gate in the mutation
// orchestrator (a responsiveness optimization, never a trust boundary).
// Adding a role means extending the Role constants and the switch in
// PermissionsFor; there is no second copy to drift.
package authz

// Role is the closed set of actor roles.
type Role string

const (
	// RoleUser can view patient records but not mutate them.
	RoleUser Role = "user"
	// RoleDoctor has full read/write access to patient records.
	RoleDoctor Role = "doctor"
)

// Valid reports whether r is a recognised role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDoctor:
		return true
	}
	return false
}

// Operation is the kind of action a caller wants to perform.
type Operation string

const (
	OpView   Operation = "view"
	OpCreate Operation = "create"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// Permissions is the full permission set granted to a role.
type Permissions struct {
	CanView   bool
	CanCreate bool
	CanEdit   bool
	CanDelete bool
}

// PermissionsFor maps a role to its permission set. Pure; unknown roles
// get no permissions at all.
func PermissionsFor(r Role) Permissions {
	switch r {
	case RoleUser:
		return Permissions{CanView: true}
	case RoleDoctor:
		return Permissions{CanView: true, CanCreate: true, CanEdit: true, CanDelete: true}
	}
	return Permissions{}
}

// Allows reports whether the permission set covers op.
func (p Permissions) Allows(op Operation) bool {
	switch op {
	case OpView:
		return p.CanView
	case OpCreate:
		return p.CanCreate
	case OpEdit:
		return p.CanEdit
	case OpDelete:
		return p.CanDelete
	}
	return false
}

// Can is the one-shot form used at both enforcement points.
func Can(r Role, op Operation) bool {
	return PermissionsFor(r).Allows(op)
}
