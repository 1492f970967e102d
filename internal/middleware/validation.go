package middleware

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields under their JSON names so error messages match the
	// wire format ("name", "price", "category.id").
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateDocument validates a struct with validation tags, including
// nested documents
func ValidateDocument(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes a JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateDocument(v)
}

// FieldError represents a single field validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// String renders the error in the response message format.
func (e FieldError) String() string {
	return "The field " + e.Field + " " + e.Message
}

// FormatFieldErrors converts validator errors into per-field messages.
// A nil slice means the error was not a validation failure.
func FormatFieldErrors(err error) []FieldError {
	var fieldErrors []FieldError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   fieldPath(e),
				Message: getErrorMessage(e),
			})
		}
	}

	return fieldErrors
}

// FieldErrorMessages renders field errors as plain strings for the 400 body.
func FieldErrorMessages(fieldErrors []FieldError) []string {
	messages := make([]string, 0, len(fieldErrors))
	for _, e := range fieldErrors {
		messages = append(messages, e.String())
	}
	return messages
}

// fieldPath strips the root struct segment from the namespace so nested
// failures read "category.id" rather than "Product.category.id".
func fieldPath(e validator.FieldError) string {
	namespace := e.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return e.Field()
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	default:
		return "is invalid"
	}
}
