package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser         Role = "user"
	RolePractitioner Role = "practitioner"
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleStaff        Role = "staff"
	RoleSupport      Role = "support"
)

// AllRoles lists every known role.
var AllRoles = []Role{RoleUser, RolePractitioner, RoleAdmin, RoleManager, RoleStaff, RoleSupport}

// EmployeeRoles are the roles allowed to use employee endpoints.
var EmployeeRoles = []Role{RoleAdmin, RoleManager, RoleStaff, RoleSupport}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsEmployee reports whether r belongs to the employee role set.
func (r Role) IsEmployee() bool {
	for _, e := range EmployeeRoles {
		if r == e {
			return true
		}
	}
	return false
}

// Permission is the closed set of named capabilities.
type Permission string

const (
	PermManageUsers         Permission = "manage_users"
	PermManageEvents        Permission = "manage_events"
	PermManagePractitioners Permission = "manage_practitioners"
	PermViewAnalytics       Permission = "view_analytics"
	PermSystemSettings      Permission = "system_settings"

	// Elevated permissions gate destructive account operations.
	PermChangeUserPasswords Permission = "change_user_passwords"
	PermDeleteUsers         Permission = "delete_users"
)

// AllPermissions lists every known permission.
var AllPermissions = []Permission{
	PermManageUsers,
	PermManageEvents,
	PermManagePractitioners,
	PermViewAnalytics,
	PermSystemSettings,
	PermChangeUserPasswords,
	PermDeleteUsers,
}

// ParsePermission validates a permission name.
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", s)
	}
	return p, nil
}

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// Elevated reports whether p gates a destructive operation.
func (p Permission) Elevated() bool {
	return p == PermChangeUserPasswords || p == PermDeleteUsers
}

// Permissions is an ordered set of permissions.
type Permissions []Permission

// Has reports whether perm is in the set.
func (ps Permissions) Has(perm Permission) bool {
	for _, p := range ps {
		if p == perm {
			return true
		}
	}
	return false
}

// Normalize drops duplicates while keeping first-seen order.
func (ps Permissions) Normalize() Permissions {
	out := make(Permissions, 0, len(ps))
	for _, p := range ps {
		if !out.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Status is the account lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusSuspended
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	Department  string      `json:"department,omitempty"`
	Permissions Permissions `json:"permissions"`
	Status      Status      `json:"status"`
}

// Active reports whether the principal may be authorized at all.
func (p *Principal) Active() bool {
	return p != nil && (p.Status == "" || p.Status == StatusActive)
}
