package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"open to in-progress", ProjectStatusOpen, ProjectStatusInProgress, true},
		{"in-progress to pending-review", ProjectStatusInProgress, ProjectStatusPendingReview, true},
		{"pending-review to completed", ProjectStatusPendingReview, ProjectStatusCompleted, true},
		{"open cannot skip to completed", ProjectStatusOpen, ProjectStatusCompleted, false},
		{"no transition backwards", ProjectStatusInProgress, ProjectStatusOpen, false},
		{"completed is terminal", ProjectStatusCompleted, ProjectStatusOpen, false},
		{"same status is not a transition", ProjectStatusOpen, ProjectStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestProjectCapacityAndMembership(t *testing.T) {
	orgID := primitive.NewObjectID()
	devID := primitive.NewObjectID()
	outsiderID := primitive.NewObjectID()

	project := Project{
		OrganizationID: orgID,
		MaxDevelopers:  2,
		AssignedDevelopers: []AssignedDeveloper{
			{UserID: devID, Name: "Dev One", AssignedAt: time.Now()},
		},
	}

	assert.True(t, project.HasCapacity())
	assert.True(t, project.IsAssigned(devID))
	assert.False(t, project.IsAssigned(orgID))

	assert.True(t, project.IsParticipant(orgID))
	assert.True(t, project.IsParticipant(devID))
	assert.False(t, project.IsParticipant(outsiderID))

	ids := project.ParticipantIDs()
	assert.Equal(t, []primitive.ObjectID{orgID, devID}, ids)

	project.AssignedDevelopers = append(project.AssignedDevelopers, AssignedDeveloper{
		UserID: primitive.NewObjectID(), Name: "Dev Two", AssignedAt: time.Now(),
	})
	assert.False(t, project.HasCapacity())
}
