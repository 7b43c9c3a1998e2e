package utils

import (
	"testing"

	"devtogether-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func user(name string) models.User {
	return models.User{ID: primitive.NewObjectID(), Name: name}
}

func TestExtractMentions(t *testing.T) {
	anna := user("Anna")
	bohdan := user("Bohdan")
	candidates := []models.User{anna, bohdan}

	mentioned := ExtractMentions("Дякую @Anna та @Bohdan за допомогу!", candidates)
	assert.ElementsMatch(t, []primitive.ObjectID{anna.ID, bohdan.ID}, mentioned)
}

func TestExtractMentionsCaseInsensitive(t *testing.T) {
	anna := user("Anna")

	mentioned := ExtractMentions("ping @anna and @ANNA", []models.User{anna})
	assert.Equal(t, []primitive.ObjectID{anna.ID}, mentioned)
}

func TestExtractMentionsLongestNameWins(t *testing.T) {
	anna := user("Anna")
	annaMaria := user("Anna Maria")
	candidates := []models.User{anna, annaMaria}

	// "@Anna Maria" має дістатись користувачу з довшим ім'ям, а не Anna
	mentioned := ExtractMentions("привіт @Anna Maria", candidates)
	assert.Equal(t, []primitive.ObjectID{annaMaria.ID}, mentioned)
}

func TestExtractMentionsBothShortAndLong(t *testing.T) {
	anna := user("Anna")
	annaMaria := user("Anna Maria")
	candidates := []models.User{anna, annaMaria}

	mentioned := ExtractMentions("@Anna Maria і окремо @Anna", candidates)
	assert.ElementsMatch(t, []primitive.ObjectID{anna.ID, annaMaria.ID}, mentioned)
}

func TestExtractMentionsNoMatches(t *testing.T) {
	anna := user("Anna")

	assert.Empty(t, ExtractMentions("без згадок", []models.User{anna}))
	assert.Empty(t, ExtractMentions("@Stranger тут немає", []models.User{anna}))
	assert.Empty(t, ExtractMentions("@Anna", nil))
}
