// internal/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignedDeveloper - стаб призначеного розробника в документі проєкту
type AssignedDeveloper struct {
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name       string             `bson:"name" json:"name"`
	AssignedAt time.Time          `bson:"assigned_at" json:"assigned_at"`
}

type Project struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id" validate:"required"`

	Title        string   `bson:"title" json:"title" validate:"required,min=5,max=200"`
	Description  string   `bson:"description" json:"description" validate:"required,min=10,max=5000"`
	Requirements string   `bson:"requirements" json:"requirements" validate:"max=5000"`
	Technologies []string `bson:"technologies" json:"technologies" validate:"required,min=1,dive,min=1"`

	// Складність та оцінка часу
	Difficulty        string `bson:"difficulty" json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	EstimatedDuration string `bson:"estimated_duration" json:"estimated_duration"`

	// Політика зарахування: direct - авто-прийом, application - через заявку, hybrid - змішана
	EnrollmentType string `bson:"enrollment_type" json:"enrollment_type" validate:"required,oneof=direct application hybrid"`

	// Учасники
	MaxDevelopers      int                 `bson:"max_developers" json:"max_developers" validate:"required,min=1,max=20"`
	AssignedDevelopers []AssignedDeveloper `bson:"assigned_developers" json:"assigned_developers"`

	// Денормалізоване ім'я організації для списків
	OrganizationName string `bson:"organization_name" json:"organization_name"`

	// Статус: open -> in-progress -> pending-review -> completed
	Status string `bson:"status" json:"status"`

	// Кешована ілюстрація з зовнішнього пошуку зображень
	CoverImageURL string `bson:"cover_image_url,omitempty" json:"cover_image_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Статуси проєкту
const (
	ProjectStatusOpen          = "open"
	ProjectStatusInProgress    = "in-progress"
	ProjectStatusPendingReview = "pending-review"
	ProjectStatusCompleted     = "completed"
)

// Типи зарахування
const (
	EnrollmentTypeDirect      = "direct"
	EnrollmentTypeApplication = "application"
	EnrollmentTypeHybrid      = "hybrid"
)

// Рівні складності
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// projectStatusFlow - єдиний легальний ланцюжок переходів статусу
var projectStatusFlow = map[string]string{
	ProjectStatusOpen:          ProjectStatusInProgress,
	ProjectStatusInProgress:    ProjectStatusPendingReview,
	ProjectStatusPendingReview: ProjectStatusCompleted,
}

// CanTransitionTo перевіряє чи дозволений перехід статусу
func CanTransitionTo(from, to string) bool {
	return projectStatusFlow[from] == to
}

// Методы для работы с проектами

func (p *Project) IsAssigned(userID primitive.ObjectID) bool {
	for _, dev := range p.AssignedDevelopers {
		if dev.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Project) HasCapacity() bool {
	return len(p.AssignedDevelopers) < p.MaxDevelopers
}

// IsParticipant - учасником вважається організація-власник або призначений розробник
func (p *Project) IsParticipant(userID primitive.ObjectID) bool {
	if p.OrganizationID == userID {
		return true
	}
	return p.IsAssigned(userID)
}

// ParticipantIDs повертає ID всіх учасників проєкту
func (p *Project) ParticipantIDs() []primitive.ObjectID {
	ids := []primitive.ObjectID{p.OrganizationID}
	for _, dev := range p.AssignedDevelopers {
		ids = append(ids, dev.UserID)
	}
	return ids
}
