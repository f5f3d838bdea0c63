package rbac

import (
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcer_Can(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	tests := []struct {
		role user.Role
		perm user.Permission
		want bool
	}{
		{user.RoleEmployee, user.PermissionLeaveCreate, true},
		{user.RoleEmployee, user.PermissionLeaveApprove, false},
		{user.RoleEmployee, user.PermissionBatchRun, false},
		{user.RoleAdmin, user.PermissionLeaveApprove, true},
		{user.RoleAdmin, user.PermissionLeaveCreate, true},
		{user.RoleAdmin, user.PermissionViewOwnProfile, true},
		{user.RoleAdmin, user.PermissionEditProfileDirect, true},
		{user.RoleEmployee, user.PermissionEditProfileDirect, false},
		{user.Role("guest"), user.PermissionViewOwnProfile, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			assert.Equal(t, tt.want, e.Can(tt.role, tt.perm))
			assert.Equal(t, user.HasPermission(tt.role, tt.perm), e.Can(tt.role, tt.perm))
		})
	}
}

func TestEnforcer_Permissions(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	employee := e.Permissions(user.RoleEmployee)
	assert.ElementsMatch(t, user.RolePermissions[user.RoleEmployee], employee)

	admin := e.Permissions(user.RoleAdmin)
	assert.Len(t, admin, len(user.RolePermissions[user.RoleAdmin])+len(user.RolePermissions[user.RoleEmployee]))
	assert.Contains(t, admin, user.PermissionLeaveCreate)
}
