package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperr "wellnesshub/internal/errors"
)

func TestAuthorize(t *testing.T) {
	admin := &Principal{ID: "1", Role: RoleAdmin, Status: StatusActive}
	staff := &Principal{ID: "2", Role: RoleStaff, Status: StatusActive, Permissions: Permissions{PermManageEvents}}
	member := &Principal{ID: "3", Role: RoleUser, Status: StatusActive}
	suspendedAdmin := &Principal{ID: "4", Role: RoleAdmin, Status: StatusSuspended}

	tests := []struct {
		name      string
		principal *Principal
		cap       Capability
		allowed   bool
		kind      apperr.Kind
	}{
		{name: "anonymous", principal: nil, cap: Employee(), kind: apperr.KindUnauthenticated},
		{name: "suspended admin denied everything", principal: suspendedAdmin, cap: HasPermission(PermManageEvents), kind: apperr.KindUnauthenticated},
		{name: "admin holds every permission", principal: admin, cap: HasPermission(PermDeleteUsers), allowed: true},
		{name: "staff with permission", principal: staff, cap: HasPermission(PermManageEvents), allowed: true},
		{name: "staff without permission", principal: staff, cap: HasPermission(PermManagePractitioners), kind: apperr.KindForbidden},
		{name: "member is not an employee", principal: member, cap: Employee(), kind: apperr.KindForbidden},
		{name: "staff is an employee", principal: staff, cap: Employee(), allowed: true},
		{name: "role match", principal: member, cap: AnyRole(RoleUser, RolePractitioner), allowed: true},
		{name: "role mismatch", principal: staff, cap: AnyRole(RoleAdmin), kind: apperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.principal, tt.cap)
			assert.Equal(t, tt.allowed, d.Allowed)
			if tt.allowed {
				assert.NoError(t, d.Err())
				return
			}
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.kind, apperr.KindOf(d.Err()))
		})
	}
}

func TestPermissionsNormalize(t *testing.T) {
	ps := Permissions{PermManageEvents, PermDeleteUsers, PermManageEvents}
	assert.Equal(t, Permissions{PermManageEvents, PermDeleteUsers}, ps.Normalize())
}

func TestParseRoleAndPermission(t *testing.T) {
	r, err := ParseRole(" Manager ")
	assert.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)

	p, err := ParsePermission("DELETE_USERS")
	assert.NoError(t, err)
	assert.True(t, p.Elevated())
	assert.False(t, PermManageUsers.Elevated())

	_, err = ParsePermission("root")
	assert.Error(t, err)
}
