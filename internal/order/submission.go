package order

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"printcalc/internal/pricing"
)

var ErrValidation = errors.New("invalid order")

// Contact is what the visitor types into the order form.
type Contact struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"required,max=50"`
	Email   string `json:"email" validate:"omitempty,email,max=200"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ValidationError lists the offending fields by their json names.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "invalid order: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func (c Contact) normalized() Contact {
	return Contact{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Comment: strings.TrimSpace(c.Comment),
	}
}

// Validate reports a *ValidationError when name or phone is blank or the
// optional email is malformed.
func (c Contact) Validate() error {
	c = c.normalized()
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("order.Contact.Validate: %w", err)
		}
		fields := make(map[string]string, len(errs))
		for _, fe := range errs {
			fields[fe.Field()] = validationMessage(fe)
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// Submission is a contact plus a snapshot of the quote at submit time.
type Submission struct {
	Contact   Contact
	Breakdown pricing.Breakdown
}

// NewSubmission validates the contact and freezes the breakdown.
func NewSubmission(contact Contact, breakdown pricing.Breakdown) (Submission, error) {
	if err := contact.Validate(); err != nil {
		return Submission{}, err
	}
	contact = contact.normalized()
	if phone := NormalizePhone(contact.Phone); phone != "" {
		contact.Phone = phone
	}
	return Submission{Contact: contact, Breakdown: breakdown}, nil
}
