// utils/valid.go
package utils

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	mobileRegex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator registers the tags used by the request models.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("otp6", func(fl validator.FieldLevel) bool {
		return IsOTP(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ValidationMessages turns validator errors into one message per field.
func ValidationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email address"
	case "e164":
		return "Invalid mobile number format. It should start with a '+' followed by the country code and mobile number."
	case "uuid4", "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "otp6":
		return "Invalid OTP format"
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = html.EscapeString(input)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// SanitizeMobile strips formatting characters and validates E.164 form.
func SanitizeMobile(mobile string) (string, error) {
	mobile = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(mobile))
	if !mobileRegex.MatchString(mobile) {
		return "", errors.New("invalid mobile number format")
	}
	return mobile, nil
}
