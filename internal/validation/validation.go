// Package validation decodes request bodies into schema structs and checks
// them against declarative rules, reporting every failed field at once.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the only accepted date_of_birth format.
const DateLayout = "2006-01-02"

var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// Violation is a single field-level failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a payload does not satisfy its schema.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic("register phone validation: " + err.Error())
	}
	return &Validator{validate: v}
}

// Struct checks s against its validate tags. It returns nil or *Error.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Violations: []Violation{{Field: "body", Message: err.Error()}}}
	}

	out := &Error{Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Violations = append(out.Violations, Violation{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// BindJSON decodes the request body into dst and validates it.
// Both malformed JSON and rule failures are reported as *Error.
func (v *Validator) BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &Error{Violations: []Violation{{
				Field:   typeErr.Field,
				Message: "Expected " + typeErr.Type.String(),
			}}}
		}
		return &Error{Violations: []Violation{{Field: "body", Message: "Invalid JSON payload"}}}
	}
	return v.Struct(dst)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "phone":
		return "Invalid phone number"
	case "datetime":
		return "Invalid date format (YYYY-MM-DD)"
	default:
		return fmt.Sprintf("Failed on the %q rule", fe.Tag())
	}
}
