package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePermissions(t *testing.T) {
	// Розробник подає заявки та здає роботу, але не керує проєктами
	assert.True(t, RoleDeveloper.HasPermission(PermissionApplyToProject))
	assert.True(t, RoleDeveloper.HasPermission(PermissionSubmitWork))
	assert.False(t, RoleDeveloper.HasPermission(PermissionCreateProject))
	assert.False(t, RoleDeveloper.HasPermission(PermissionReviewSubmission))

	// Організація керує проєктами, але не подає заявки
	assert.True(t, RoleOrganization.HasPermission(PermissionCreateProject))
	assert.True(t, RoleOrganization.HasPermission(PermissionReviewApplication))
	assert.True(t, RoleOrganization.HasPermission(PermissionReviewSubmission))
	assert.False(t, RoleOrganization.HasPermission(PermissionApplyToProject))

	// Адміністратор має всі дозволення
	for _, p := range []Permission{
		PermissionCreateProject, PermissionReviewApplication, PermissionReviewSubmission,
		PermissionApplyToProject, PermissionSubmitWork, PermissionManageUsers,
	} {
		assert.True(t, RoleAdmin.HasPermission(p), "admin should have %s", p)
	}
}

func TestUserRoleIsValid(t *testing.T) {
	for _, r := range AllRoles() {
		assert.True(t, r.IsValid())
	}
	assert.False(t, UserRole("moderator").IsValid())
	assert.False(t, UserRole("").IsValid())
}

func TestFromString(t *testing.T) {
	role, ok := FromString("developer")
	assert.True(t, ok)
	assert.Equal(t, RoleDeveloper, role)

	_, ok = FromString("superuser")
	assert.False(t, ok)
}
