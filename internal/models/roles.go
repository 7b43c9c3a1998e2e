// internal/models/roles.go

package models

// UserRole представляє роль користувача в системі
type UserRole string

// Константи для ролей
const (
	RoleDeveloper    UserRole = "developer"
	RoleOrganization UserRole = "organization"
	RoleAdmin        UserRole = "admin"
)

// Дозволення для перевірок на рівні middleware
type Permission string

const (
	PermissionCreateProject     Permission = "project:create"
	PermissionReviewApplication Permission = "application:review"
	PermissionReviewSubmission  Permission = "submission:review"
	PermissionApplyToProject    Permission = "application:create"
	PermissionSubmitWork        Permission = "submission:create"
	PermissionManageUsers       Permission = "users:manage"
)

// Карта дозволень за ролями
var rolePermissions = map[UserRole][]Permission{
	RoleDeveloper: {
		PermissionApplyToProject,
		PermissionSubmitWork,
	},
	RoleOrganization: {
		PermissionCreateProject,
		PermissionReviewApplication,
		PermissionReviewSubmission,
	},
	RoleAdmin: {
		PermissionCreateProject,
		PermissionReviewApplication,
		PermissionReviewSubmission,
		PermissionApplyToProject,
		PermissionSubmitWork,
		PermissionManageUsers,
	},
}

// IsValid перевіряє чи роль валідна
func (r UserRole) IsValid() bool {
	switch r {
	case RoleDeveloper, RoleOrganization, RoleAdmin:
		return true
	}
	return false
}

// HasPermission перевіряє чи роль має конкретне дозволення
func (r UserRole) HasPermission(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// String повертає строкове представлення ролі
func (r UserRole) String() string {
	return string(r)
}

// AllRoles повертає список всіх доступних ролей
func AllRoles() []UserRole {
	return []UserRole{
		RoleDeveloper,
		RoleOrganization,
		RoleAdmin,
	}
}

// FromString конвертує string в UserRole
func FromString(role string) (UserRole, bool) {
	r := UserRole(role)
	if r.IsValid() {
		return r, true
	}
	return "", false
}
