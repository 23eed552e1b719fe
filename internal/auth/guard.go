package auth

import (
	"fmt"
	"strings"

	apperr "wellnesshub/internal/errors"
)

// Capability is a requirement a principal must satisfy.
type Capability struct {
	roles      []Role
	employee   bool
	permission Permission
}

// AnyRole requires the principal's role to be one of roles.
func AnyRole(roles ...Role) Capability {
	return Capability{roles: roles}
}

// Employee requires the principal's role to be in the employee role set.
func Employee() Capability {
	return Capability{employee: true}
}

// HasPermission requires perm, which role admin always holds.
func HasPermission(perm Permission) Capability {
	return Capability{permission: perm}
}

func (c Capability) String() string {
	switch {
	case len(c.roles) > 0:
		names := make([]string, len(c.roles))
		for i, r := range c.roles {
			names[i] = string(r)
		}
		return "role:" + strings.Join(names, "|")
	case c.employee:
		return "employee"
	case c.permission != "":
		return "permission:" + string(c.permission)
	default:
		return "none"
	}
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Kind    apperr.Kind
	Reason  string
}

// Err converts a denial into an AppError; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.New(d.Kind, d.Reason)
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(kind apperr.Kind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// Authorize evaluates a capability against a principal. It performs no I/O.
func Authorize(p *Principal, c Capability) Decision {
	if p == nil {
		return deny(apperr.KindUnauthenticated, "authentication required")
	}
	if !p.Active() {
		return deny(apperr.KindUnauthenticated, "account is not active")
	}

	switch {
	case len(c.roles) > 0:
		for _, r := range c.roles {
			if p.Role == r {
				return allow()
			}
		}
		return deny(apperr.KindForbidden, fmt.Sprintf("role %s is not authorized to access this resource", p.Role))
	case c.employee:
		if p.Role.IsEmployee() {
			return allow()
		}
		return deny(apperr.KindForbidden, "access denied: employees only")
	case c.permission != "":
		if p.Role == RoleAdmin || p.Permissions.Has(c.permission) {
			return allow()
		}
		return deny(apperr.KindForbidden, "insufficient permissions")
	}
	return allow()
}
