package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id" validate:"required"`

	SenderID   primitive.ObjectID `bson:"sender_id" json:"sender_id" validate:"required"`
	SenderName string             `bson:"sender_name" json:"sender_name"`
	ReceiverID primitive.ObjectID `bson:"receiver_id" json:"receiver_id" validate:"required"`

	Content string `bson:"content" json:"content" validate:"required,max=2000"`

	// Список учасників розмови для membership-запитів ($in)
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`

	IsRead    bool       `bson:"is_read" json:"is_read"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}
