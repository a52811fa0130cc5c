package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps json field names to the labels shown to API clients.
var FieldLabels = map[string]string{
	"email":       "Email",
	"password":    "Password",
	"fullName":    "Full name",
	"jobTitle":    "Job title",
	"phoneNumber": "Phone number",
	"ids":         "IDs",
	"starred":     "Starred",
}

// New returns a validator that reports fields by their json names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: Required", label)
	case "email":
		return fmt.Sprintf("%s: Invalid email format", label)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s: At least %s characters", label, param)
		}
		return fmt.Sprintf("%s: At least %s", label, param)
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s: At most %s characters", label, param)
		}
		return fmt.Sprintf("%s: At most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: Must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("%s: Invalid ID", label)
	default:
		return fmt.Sprintf("%s: Invalid value (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the label for a field, spacing camelCase names it does not know.
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
			r += 'a' - 'A'
		} else if i == 0 && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		result.WriteRune(r)
	}
	return result.String()
}
