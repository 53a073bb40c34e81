// Package dto содержит структуры запросов и ответов HTTP API.
package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ErrValidation помечает ошибку разбора или проверки тела запроса.
var ErrValidation = errors.New("validation failed")

const (
	tagFinite   = "finite"
	tagAnyField = "any_field"

	msgInvalidBody = "invalid request body"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях поля называются так же, как в JSON.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(tagFinite, finiteNumber); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(updateHasField, CalculationUpdateRequest{})
	return v
}

func finiteNumber(fl validator.FieldLevel) bool {
	switch f := fl.Field(); f.Kind() {
	case reflect.Float32, reflect.Float64:
		return !math.IsInf(f.Float(), 0) && !math.IsNaN(f.Float())
	default:
		return false
	}
}

// StructValidator подключает validator/v10 к привязке fiber.
type StructValidator struct{}

// Validate проверяет теги validate и переводит нарушения в ErrValidation.
func (StructValidator) Validate(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalid("%s", err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return invalid("%s", strings.Join(msgs, ", "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		if fe.Param() == "1" {
			return fe.Field() + " must not be empty"
		}
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case tagFinite:
		return fe.Field() + " must be a finite number"
	case tagAnyField:
		return "at least one of a, b, type required"
	default:
		return fe.Field() + " is invalid"
	}
}

// BindJSON разбирает тело запроса в out и проверяет его.
// Ошибка разбора JSON, как и нарушение правил, дает ErrValidation.
func BindJSON(ctx fiber.Ctx, out any) error {
	err := ctx.Bind().JSON(out)
	if err == nil || errors.Is(err, ErrValidation) {
		return err
	}
	return invalid("%s: %v", msgInvalidBody, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Number - число ответа. Бесконечности и NaN кодируются строками "+Inf", "-Inf", "NaN",
// так как JSON не представляет их числом.
type Number float64

// MarshalJSON реализует json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}
