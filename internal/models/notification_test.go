package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationLink(t *testing.T) {
	projectID := primitive.NewObjectID()
	base := "/project/" + projectID.Hex()

	tests := []struct {
		notificationType string
		want             string
	}{
		{NotificationTypeProjectSubmission, base + "?tab=submissions"},
		{NotificationTypeSubmissionReview, base + "?tab=submissions"},
		{NotificationTypeNewComment, base + "#comments"},
		{NotificationTypeMention, base + "#comments"},
		{NotificationTypeNewApplication, base + "?tab=applications"},
		{NotificationTypeApplicationStatus, base + "?tab=applications"},
		{NotificationTypeNewMessage, base + "?tab=chat"},
		{NotificationTypeProjectUpdate, base},
		{NotificationTypeSkillsUpdated, base},
		{NotificationTypeGeneral, base},
	}

	for _, tt := range tests {
		t.Run(tt.notificationType, func(t *testing.T) {
			assert.Equal(t, tt.want, NotificationLink(tt.notificationType, &projectID))
		})
	}
}

func TestNotificationLinkWithoutProject(t *testing.T) {
	assert.Equal(t, "/dashboard", NotificationLink(NotificationTypeGeneral, nil))
	assert.Equal(t, "/dashboard", NotificationLink(NotificationTypeNewMessage, nil))
}
