package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialApplicationStatus(t *testing.T) {
	tests := []struct {
		name           string
		enrollmentType string
		acceptedCount  int64
		maxDevelopers  int
		want           string
	}{
		{
			name:           "direct always accepts",
			enrollmentType: EnrollmentTypeDirect,
			acceptedCount:  3,
			maxDevelopers:  4,
			want:           ApplicationStatusAccepted,
		},
		{
			name:           "application always pending",
			enrollmentType: EnrollmentTypeApplication,
			acceptedCount:  0,
			maxDevelopers:  4,
			want:           ApplicationStatusPending,
		},
		{
			name:           "hybrid accepts below half capacity",
			enrollmentType: EnrollmentTypeHybrid,
			acceptedCount:  1,
			maxDevelopers:  4,
			want:           ApplicationStatusAccepted,
		},
		{
			name:           "hybrid pending at half capacity",
			enrollmentType: EnrollmentTypeHybrid,
			acceptedCount:  2,
			maxDevelopers:  4,
			want:           ApplicationStatusPending,
		},
		{
			name:           "hybrid with odd capacity uses integer division",
			enrollmentType: EnrollmentTypeHybrid,
			acceptedCount:  1,
			maxDevelopers:  3,
			want:           ApplicationStatusPending,
		},
		{
			name:           "hybrid with capacity one never auto-accepts",
			enrollmentType: EnrollmentTypeHybrid,
			acceptedCount:  0,
			maxDevelopers:  1,
			want:           ApplicationStatusPending,
		},
		{
			name:           "unknown enrollment type falls back to pending",
			enrollmentType: "invite-only",
			acceptedCount:  0,
			maxDevelopers:  4,
			want:           ApplicationStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InitialApplicationStatus(tt.enrollmentType, tt.acceptedCount, tt.maxDevelopers)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplicationIsDecided(t *testing.T) {
	assert.False(t, (&Application{Status: ApplicationStatusPending}).IsDecided())
	assert.True(t, (&Application{Status: ApplicationStatusAccepted}).IsDecided())
	assert.True(t, (&Application{Status: ApplicationStatusRejected}).IsDecided())

	// Відкликана заявка не вважається розглянутою організацією
	assert.False(t, (&Application{Status: ApplicationStatusWithdrawn}).IsDecided())
}

func TestApplicationIsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ApplicationStatusPending, false},
		{ApplicationStatusAccepted, true},
		{ApplicationStatusRejected, true},
		{ApplicationStatusWithdrawn, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			app := &Application{Status: tt.status}
			assert.Equal(t, tt.want, app.IsTerminal())
		})
	}
}
