package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"finance-tracker/shared/models"

	"github.com/go-playground/validator/v10"
)

// v - общий валидатор пакета. Кастомные правила регистрируются в init().
var v = validator.New()

func init() {
	// В сообщениях об ошибках используем имена полей из json-тегов.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notification_type", func(fl validator.FieldLevel) bool {
		return models.NotificationType(fl.Field().String()).Valid()
	})
}

// Struct проверяет структуру по ее validate-тегам.
// Ошибка валидации оборачивает models.ErrInvalidInput.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, strings.Join(msgs, "; "))
	}
	return nil
}
