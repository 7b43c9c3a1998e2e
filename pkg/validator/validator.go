package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Init ініціалізує глобальний валідатор зі структурними тегами `validate`
func Init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// Struct валідує структуру за тегами. Використовується як межа валідації
// при створенні/оновленні документів перед записом у базу
func Struct(s interface{}) error {
	if validate == nil {
		Init()
	}
	return validate.Struct(s)
}
