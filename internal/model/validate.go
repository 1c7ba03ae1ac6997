package model

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError holds a list of field-level validation errors. These are
// raised before any request leaves the client; they never reach the wire.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidEmail reports whether s looks like an email address. This is a shape
// check, not RFC validation; the mail server has the final word.
func ValidEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	if !strings.Contains(domain, ".") || strings.ContainsAny(s, " \t\n") {
		return false
	}
	return true
}

// ValidPhone reports whether s is a plausible phone number: digits with
// optional leading + and optional spaces/dashes, at least 7 digits.
func ValidPhone(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 7
}

// ValidateSignup checks the signup form fields, including the password
// confirmation, before any request is issued.
func ValidateSignup(email, name, password, confirm string) error {
	var ve ValidationError

	if strings.TrimSpace(email) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "email", Message: "is required"})
	} else if !ValidEmail(strings.TrimSpace(email)) {
		ve.Errors = append(ve.Errors, FieldError{Field: "email", Message: "is not a valid email address"})
	}

	if strings.TrimSpace(name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	}

	if len(password) < 8 {
		ve.Errors = append(ve.Errors, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if password != confirm {
		ve.Errors = append(ve.Errors, FieldError{Field: "confirm", Message: "does not match password"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateTicket checks a Ticket for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the ticket is valid.
func ValidateTicket(t *Ticket) error {
	var ve ValidationError

	subject := strings.TrimSpace(t.Subject)
	if subject == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "subject", Message: "is required"})
	} else if len([]rune(subject)) > 200 {
		ve.Errors = append(ve.Errors, FieldError{Field: "subject", Message: "must be 200 characters or fewer"})
	}

	if strings.TrimSpace(t.Description) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "description", Message: "is required"})
	}

	if !t.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", t.Status),
		})
	}

	if !t.Priority.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "priority",
			Message: fmt.Sprintf("invalid value %q", t.Priority),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateDocumentRequest checks a document request before submission.
func ValidateDocumentRequest(d *Document) error {
	var ve ValidationError

	if strings.TrimSpace(d.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(d.Type) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "type", Message: "is required"})
	}
	if d.ReferenceDate.IsZero() {
		ve.Errors = append(ve.Errors, FieldError{Field: "reference_date", Message: "is required"})
	}
	if !d.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", d.Status),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
