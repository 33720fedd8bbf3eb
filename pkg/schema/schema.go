// Package schema содержит таблицы правил валидации ресурсов каталога.
// Одни и те же таблицы используются сервером (перед записью в БД)
// и клиентом админки (до отправки формы), поэтому правила не дублируются
// в тегах структур.
package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Rule правило для одного поля ресурса в синтаксисе go-playground/validator
type Rule struct {
	Field string
	Tags  string
}

// Rules упорядоченная таблица правил ресурса
type Rules []Rule

// Category правила для категории
var Category = Rules{
	{Field: "name", Tags: "required,min=1,max=255"},
}

// Product правила для товара
var Product = Rules{
	{Field: "name", Tags: "required,min=2,max=255"},
	{Field: "description", Tags: "required,min=10"},
	{Field: "price", Tags: "required,gt=0"},
	{Field: "category", Tags: "required"},
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// FieldError ошибка валидации одного поля
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// FieldErrors ошибки валидации в порядке полей таблицы правил
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "\n")
}

// Map возвращает ошибки в виде field -> message
func (e FieldErrors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		out[fe.Field] = fe.Message
	}
	return out
}

// Validate проверяет значения полей по таблице правил
// Отсутствующее поле проверяется как нулевое значение (nil)
func (r Rules) Validate(values map[string]any) FieldErrors {
	var errs FieldErrors

	for _, rule := range r {
		value := values[rule.Field]
		if value == nil {
			// validator не умеет проверять nil interface, required на пустой строке дает тот же результат
			value = ""
		}

		err := instance().Var(value, rule.Tags)
		if err == nil {
			continue
		}

		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			errs = append(errs, FieldError{
				Field:   rule.Field,
				Tag:     fe.Tag(),
				Message: Message(fe.Tag(), fe.Param()),
			})
			continue
		}

		errs = append(errs, FieldError{Field: rule.Field, Tag: "invalid", Message: "This value is not valid."})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Fields возвращает имена полей таблицы правил
func (r Rules) Fields() []string {
	out := make([]string, len(r))
	for i, rule := range r {
		out[i] = rule.Field
	}
	return out
}

// Message возвращает человекочитаемое сообщение для тега validator
func Message(tag, param string) string {
	switch tag {
	case "required":
		return "This value should not be blank."
	case "min":
		return fmt.Sprintf("This value is too short. It should have %s characters or more.", param)
	case "max":
		return fmt.Sprintf("This value is too long. It should have %s characters or less.", param)
	case "gt":
		if param == "0" {
			return "This value should be positive."
		}
		return fmt.Sprintf("This value should be greater than %s.", param)
	default:
		return "This value is not valid."
	}
}
