package model

// Role classifies who is making a request.
type Role string

const (
	RoleAnonymous  Role = "anonymous"
	RoleCitizen    Role = "citizen"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseNivel converts a stored nivel_acesso value into a staff role.
func ParseNivel(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

// Actor is the identity attached to a request after the session is
// resolved. UserID is only meaningful for staff.
type Actor struct {
	Role   Role
	UserID uint64
	Nome   string
	Email  string
	IP     string
	Agent  string
}

// Anonymous returns an unauthenticated actor.
func Anonymous() Actor { return Actor{Role: RoleAnonymous} }

// IsStaff reports whether the actor is an admin or super admin.
func (a Actor) IsStaff() bool { return a.Role == RoleAdmin || a.Role == RoleSuperAdmin }

// IsSuperAdmin reports whether the actor may manage staff accounts.
func (a Actor) IsSuperAdmin() bool { return a.Role == RoleSuperAdmin }

// IsCitizen reports whether the actor logged in as a citizen.
func (a Actor) IsCitizen() bool { return a.Role == RoleCitizen }

// Authenticated reports whether any login is attached.
func (a Actor) Authenticated() bool { return a.Role != RoleAnonymous && a.Role != "" }
