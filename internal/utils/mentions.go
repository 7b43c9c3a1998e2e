package utils

import (
	"sort"
	"strings"

	"devtogether-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExtractMentions знаходить згаданих через @ім'я учасників у тексті коментаря.
// Імена зіставляються з переданим списком кандидатів, довші імена перевіряються
// першими, щоб користувач з ім'ям-підстрокою іншого імені не перехоплював згадку
func ExtractMentions(content string, candidates []models.User) []primitive.ObjectID {
	ordered := make([]models.User, len(candidates))
	copy(ordered, candidates)

	// Сортування за довжиною імені, довші спочатку
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Name) > len(ordered[j].Name)
	})

	lower := strings.ToLower(content)
	var mentioned []primitive.ObjectID
	seen := make(map[primitive.ObjectID]bool)
	claimed := make([]bool, len(lower))

	for _, user := range ordered {
		if user.Name == "" {
			continue
		}
		needle := "@" + strings.ToLower(user.Name)

		offset := 0
		for {
			idx := strings.Index(lower[offset:], needle)
			if idx == -1 {
				break
			}
			pos := offset + idx
			offset = pos + 1

			// Позиція вже зайнята довшим ім'ям
			if claimed[pos] {
				continue
			}

			for i := pos; i < pos+len(needle); i++ {
				claimed[i] = true
			}

			if !seen[user.ID] {
				seen[user.ID] = true
				mentioned = append(mentioned, user.ID)
			}
		}
	}

	return mentioned
}
