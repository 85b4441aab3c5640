// Package invite validates and submits invitations for new console users.
package invite

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fyrsmithlabs/vocabadmin/internal/vocab"
)

// emailPattern is deliberately loose: local@domain.tld with no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const msgInvalidEmail = "Please enter a valid email address"

var requiredMessages = map[string]string{
	"Name":    "Name is required",
	"Surname": "Surname is required",
	"Email":   "Email is required",
	"Role":    "Role is required",
}

// fieldKeys maps struct fields to form field names.
var fieldKeys = map[string]string{
	"Name":    "name",
	"Surname": "surname",
	"Email":   "email",
	"Role":    "role",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidationError is a single form rule violation. Message is shown inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Normalize trims every field of req.
func Normalize(req vocab.InviteRequest) vocab.InviteRequest {
	return vocab.InviteRequest{
		Name:    strings.TrimSpace(req.Name),
		Surname: strings.TrimSpace(req.Surname),
		Email:   strings.TrimSpace(req.Email),
		Role:    strings.TrimSpace(req.Role),
	}
}

// Validate checks req after trimming and returns the first failing rule, or
// nil. Missing fields are reported before a malformed email, in form order.
func Validate(req vocab.InviteRequest) *ValidationError {
	err := validate.Struct(Normalize(req))
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	for _, fe := range errs {
		if fe.Tag() == "required" {
			return &ValidationError{Field: fieldKeys[fe.Field()], Message: requiredMessages[fe.Field()]}
		}
	}
	fe := errs[0]
	if fe.Tag() == "simple_email" {
		return &ValidationError{Field: fieldKeys[fe.Field()], Message: msgInvalidEmail}
	}
	return &ValidationError{Field: fieldKeys[fe.Field()], Message: fe.Error()}
}
