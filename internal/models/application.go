package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application - заявка розробника на участь у проєкті
type Application struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id" validate:"required"`

	// Стаб заявника для списків без додаткових запитів
	ApplicantID     primitive.ObjectID `bson:"applicant_id" json:"applicant_id" validate:"required"`
	ApplicantName   string             `bson:"applicant_name" json:"applicant_name"`
	ApplicantAvatar string             `bson:"applicant_avatar,omitempty" json:"applicant_avatar,omitempty"`

	CoverLetter  string `bson:"cover_letter" json:"cover_letter" validate:"max=3000"`
	GithubURL    string `bson:"github_url,omitempty" json:"github_url,omitempty" validate:"omitempty,url"`
	PortfolioURL string `bson:"portfolio_url,omitempty" json:"portfolio_url,omitempty" validate:"omitempty,url"`

	// pending -> accepted | rejected | withdrawn, термінальні.
	// Заявки ніколи не видаляються, відкликання - зміна статусу
	Status string `bson:"status" json:"status"`

	AppliedAt time.Time           `bson:"applied_at" json:"applied_at"`
	DecidedAt *time.Time          `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecidedBy *primitive.ObjectID `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
}

// Статуси заявки
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

// IsDecided перевіряє чи організація вже розглянула заявку
func (a *Application) IsDecided() bool {
	return a.Status == ApplicationStatusAccepted || a.Status == ApplicationStatusRejected
}

// IsTerminal перевіряє чи заявка в термінальному стані (розглянута або відкликана)
func (a *Application) IsTerminal() bool {
	return a.IsDecided() || a.Status == ApplicationStatusWithdrawn
}

// InitialApplicationStatus обчислює стартовий статус заявки за політикою зарахування.
// direct: завжди accepted. hybrid: accepted поки прийнятих менше половини
// max_developers (цілочисельне ділення), інакше pending. application: завжди pending.
func InitialApplicationStatus(enrollmentType string, acceptedCount int64, maxDevelopers int) string {
	switch enrollmentType {
	case EnrollmentTypeDirect:
		return ApplicationStatusAccepted
	case EnrollmentTypeHybrid:
		if acceptedCount < int64(maxDevelopers/2) {
			return ApplicationStatusAccepted
		}
		return ApplicationStatusPending
	default:
		return ApplicationStatusPending
	}
}
