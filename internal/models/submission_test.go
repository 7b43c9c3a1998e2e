package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeSkills(t *testing.T) {
	tests := []struct {
		name         string
		existing     []string
		technologies []string
		wantMerged   []string
		wantAdded    []string
	}{
		{
			name:         "adds only new technologies",
			existing:     []string{"Go", "React"},
			technologies: []string{"React", "MongoDB"},
			wantMerged:   []string{"Go", "React", "MongoDB"},
			wantAdded:    []string{"MongoDB"},
		},
		{
			name:         "empty profile takes all technologies",
			existing:     nil,
			technologies: []string{"Python", "Django"},
			wantMerged:   []string{"Python", "Django"},
			wantAdded:    []string{"Python", "Django"},
		},
		{
			name:         "nothing new leaves skills untouched",
			existing:     []string{"Go", "Docker"},
			technologies: []string{"Docker", "Go"},
			wantMerged:   []string{"Go", "Docker"},
			wantAdded:    nil,
		},
		{
			name:         "order of existing skills is preserved",
			existing:     []string{"TypeScript", "Vue", "Redis"},
			technologies: []string{"Redis", "Kubernetes", "Vue"},
			wantMerged:   []string{"TypeScript", "Vue", "Redis", "Kubernetes"},
			wantAdded:    []string{"Kubernetes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, added := MergeSkills(tt.existing, tt.technologies)
			assert.Equal(t, tt.wantMerged, merged)
			assert.Equal(t, tt.wantAdded, added)
		})
	}
}

func TestSubmissionIsReviewed(t *testing.T) {
	assert.False(t, (&Submission{Status: SubmissionStatusPending}).IsReviewed())
	assert.True(t, (&Submission{Status: SubmissionStatusApproved}).IsReviewed())
	assert.True(t, (&Submission{Status: SubmissionStatusRejected}).IsReviewed())
}
