package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletedProject - денормалізований знімок завершеного проєкту в профілі розробника
type CompletedProject struct {
	ProjectID    primitive.ObjectID `bson:"project_id" json:"project_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Technologies []string           `bson:"technologies" json:"technologies"`
	CompletedAt  time.Time          `bson:"completed_at" json:"completed_at"`

	// Атрибуція рецензента та відгук
	ReviewedBy   primitive.ObjectID `bson:"reviewed_by" json:"reviewed_by"`
	ReviewerName string             `bson:"reviewer_name" json:"reviewer_name"`
	Feedback     string             `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// OrganizationInfo - дані, що заповнюються лише для ролі organization
type OrganizationInfo struct {
	Name               string `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Mission            string `bson:"mission" json:"mission" validate:"max=2000"`
	LogoURL            string `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	Website            string `bson:"website,omitempty" json:"website,omitempty" validate:"omitempty,url"`
	RegistrationNumber string `bson:"registration_number,omitempty" json:"registration_number,omitempty"`
	IsVerified         bool   `bson:"is_verified" json:"is_verified"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	// Дискримінатор: developer | organization | admin
	Role string `bson:"role" json:"role" validate:"required,oneof=developer organization admin"`

	// Публічний профіль
	Name      string `bson:"name" json:"name" validate:"required,min=2,max=100"`
	AvatarURL string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Bio       string `bson:"bio,omitempty" json:"bio,omitempty" validate:"max=2000"`

	// Навички та досягнення розробника
	Skills            []string           `bson:"skills" json:"skills"`
	CompletedProjects []CompletedProject `bson:"completed_projects" json:"completed_projects"`

	// Блок організації
	Organization *OrganizationInfo `bson:"organization,omitempty" json:"organization,omitempty"`

	IsBlocked bool `bson:"is_blocked" json:"is_blocked"`

	// Временные метки
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}

// IsOrganization перевіряє чи користувач є організацією
func (u *User) IsOrganization() bool {
	return u.Role == string(RoleOrganization)
}

// IsDeveloper перевіряє чи користувач є розробником
func (u *User) IsDeveloper() bool {
	return u.Role == string(RoleDeveloper)
}

// HasSkill перевіряє наявність навички
func (u *User) HasSkill(skill string) bool {
	for _, s := range u.Skills {
		if s == skill {
			return true
		}
	}
	return false
}
