package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type    string             `bson:"type" json:"type"`
	Message string             `bson:"message" json:"message"`

	// Навігаційне посилання, похідне від типу та project_id
	Link string `bson:"link" json:"link"`

	// Кореляційні ідентифікатори
	ProjectID    *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	SubmissionID *primitive.ObjectID `bson:"submission_id,omitempty" json:"submission_id,omitempty"`

	IsRead    bool       `bson:"is_read" json:"is_read"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// Закритий набір типів сповіщень
const (
	NotificationTypeNewMessage        = "new_message"
	NotificationTypeApplicationStatus = "application_status"
	NotificationTypeProjectUpdate     = "project_update"
	NotificationTypeNewApplication    = "new_application"
	NotificationTypeNewComment        = "new_comment"
	NotificationTypeMention           = "mention"
	NotificationTypeProjectSubmission = "project_submission"
	NotificationTypeSubmissionReview  = "submission_review"
	NotificationTypeSkillsUpdated     = "skills_updated"
	NotificationTypeGeneral           = "general"
)

// Статуси подій outbox
const (
	EventStatusPending   = "pending"
	EventStatusDelivered = "delivered"
	EventStatusFailed    = "failed"
)

// NotificationEvent - durable запис в outbox: бізнес-операція пише подію,
// окремий диспетчер доставляє сповіщення з повторними спробами
type NotificationEvent struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type    string             `bson:"type" json:"type"`
	Message string             `bson:"message" json:"message"`

	ProjectID    *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	SubmissionID *primitive.ObjectID `bson:"submission_id,omitempty" json:"submission_id,omitempty"`

	Status      string     `bson:"status" json:"status"` // pending, delivered, failed
	Attempts    int        `bson:"attempts" json:"attempts"`
	LastError   string     `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	DeliveredAt *time.Time `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
}

// NotificationLink обчислює навігаційне посилання за типом сповіщення.
// Без project_id всі типи ведуть на дашборд.
func NotificationLink(notificationType string, projectID *primitive.ObjectID) string {
	if projectID == nil {
		return "/dashboard"
	}
	base := "/project/" + projectID.Hex()
	switch notificationType {
	case NotificationTypeProjectSubmission, NotificationTypeSubmissionReview:
		return base + "?tab=submissions"
	case NotificationTypeNewComment, NotificationTypeMention:
		return base + "#comments"
	case NotificationTypeApplicationStatus, NotificationTypeNewApplication:
		return base + "?tab=applications"
	case NotificationTypeNewMessage:
		return base + "?tab=chat"
	default:
		return base
	}
}
