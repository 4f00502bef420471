package web

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var formValidator = validator.New(validator.WithRequiredStructEnabled())

type RegisterForm struct {
	Username string `form:"username" validate:"required,min=3,max=30"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type CampgroundForm struct {
	Title       string  `form:"title" validate:"required,max=120"`
	Location    string  `form:"location" validate:"required,max=200"`
	Price       float64 `form:"price" validate:"gte=0"`
	Description string  `form:"description" validate:"max=4000"`
}

type ReviewForm struct {
	Rating int    `form:"rating" validate:"required,min=1,max=5"`
	Body   string `form:"body" validate:"required,max=2000"`
}

// ValidateForm runs struct validation and flattens violations into one
// flash-friendly message.
func ValidateForm(form any) error {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, describeViolation(violation))
	}
	return fmt.Errorf("%s", strings.Join(messages, ", "))
}

func describeViolation(v validator.FieldError) string {
	field := strings.ToLower(v.Field())
	switch v.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if v.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, v.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, v.Param())
	case "max":
		if v.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, v.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, v.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, v.Param())
	default:
		return field + " is invalid"
	}
}
