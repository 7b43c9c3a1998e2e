package services

import (
	"testing"

	"devtogether-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProjectDraft(t *testing.T) {
	reply := `{
		"title": "Volunteer Portal",
		"description": "A portal for coordinating volunteers",
		"technologies": ["React", "MongoDB"],
		"difficulty": "intermediate",
		"enrollment_type": "hybrid",
		"max_developers": 4
	}`

	draft, err := ParseProjectDraft(reply)
	require.NoError(t, err)

	assert.Equal(t, "Volunteer Portal", draft.Title)
	assert.Equal(t, []string{"React", "MongoDB"}, draft.Technologies)
	assert.Equal(t, models.DifficultyIntermediate, draft.Difficulty)
	assert.Equal(t, models.EnrollmentTypeHybrid, draft.EnrollmentType)
	assert.Equal(t, 4, draft.MaxDevelopers)
}

func TestParseProjectDraftStripsCodeFences(t *testing.T) {
	reply := "```json\n{\"title\": \"Fenced\", \"max_developers\": 3}\n```"

	draft, err := ParseProjectDraft(reply)
	require.NoError(t, err)
	assert.Equal(t, "Fenced", draft.Title)
	assert.Equal(t, 3, draft.MaxDevelopers)
}

func TestParseProjectDraftExtractsObjectFromProse(t *testing.T) {
	reply := `Here is the project draft you asked for:
{"title": "Wrapped", "max_developers": 2}
Let me know if you need changes.`

	draft, err := ParseProjectDraft(reply)
	require.NoError(t, err)
	assert.Equal(t, "Wrapped", draft.Title)
}

func TestParseProjectDraftClampsFields(t *testing.T) {
	reply := `{
		"title": "Clamped",
		"technologies": ["react", "Blockchain", "MONGODB", "react"],
		"difficulty": "expert",
		"enrollment_type": "invite-only",
		"max_developers": 99
	}`

	draft, err := ParseProjectDraft(reply)
	require.NoError(t, err)

	// Технології приводяться до канонічного вигляду, невідомі відкидаються
	assert.Equal(t, []string{"React", "MongoDB"}, draft.Technologies)
	assert.Equal(t, models.DifficultyBeginner, draft.Difficulty)
	assert.Equal(t, models.EnrollmentTypeApplication, draft.EnrollmentType)
	assert.Equal(t, 20, draft.MaxDevelopers)
}

func TestParseProjectDraftMinimumDevelopers(t *testing.T) {
	draft, err := ParseProjectDraft(`{"title": "Zero", "max_developers": 0}`)
	require.NoError(t, err)
	assert.Equal(t, 1, draft.MaxDevelopers)
}

func TestParseProjectDraftRejectsGarbage(t *testing.T) {
	_, err := ParseProjectDraft("I could not produce a draft, sorry.")
	assert.ErrorIs(t, err, ErrDraftParse)

	_, err = ParseProjectDraft("")
	assert.ErrorIs(t, err, ErrDraftParse)
}
