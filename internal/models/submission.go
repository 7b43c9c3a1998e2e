package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission - здача виконаної роботи призначеним розробником
type Submission struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id" validate:"required"`

	DeveloperID   primitive.ObjectID `bson:"developer_id" json:"developer_id" validate:"required"`
	DeveloperName string             `bson:"developer_name" json:"developer_name"`

	Description   string `bson:"description" json:"description" validate:"required,min=10,max=5000"`
	RepositoryURL string `bson:"repository_url" json:"repository_url" validate:"required,url"`
	DemoURL       string `bson:"demo_url,omitempty" json:"demo_url,omitempty" validate:"omitempty,url"`

	// pending -> approved | rejected, рецензія одноразова
	Status string `bson:"status" json:"status"`

	// Відгук та атрибуція рецензента, записуються один раз
	Feedback     string              `bson:"feedback,omitempty" json:"feedback,omitempty"`
	ReviewedBy   *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewerName string              `bson:"reviewer_name,omitempty" json:"reviewer_name,omitempty"`
	ReviewedAt   *time.Time          `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`

	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
}

// Статуси здачі
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// IsReviewed перевіряє чи здача вже відрецензована
func (s *Submission) IsReviewed() bool {
	return s.Status == SubmissionStatusApproved || s.Status == SubmissionStatusRejected
}

// MergeSkills повертає об'єднання наявних навичок та технологій проєкту,
// зберігаючи порядок, а також список доданих навичок
func MergeSkills(existing, technologies []string) (merged []string, added []string) {
	seen := make(map[string]bool, len(existing))
	merged = append(merged, existing...)
	for _, s := range existing {
		seen[s] = true
	}
	for _, t := range technologies {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
			added = append(added, t)
		}
	}
	return merged, added
}
