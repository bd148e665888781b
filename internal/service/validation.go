package service

import (
	"regexp"

	"github.com/octobees/lead-gateway/internal/dto"
)

const (
	minNameLength    = 2
	minPhoneLength   = 7
	maxMessageLength = 2000
)

// emailPattern is deliberately loose: local@domain.tld with no spaces or extra @.
// The excluded class covers Unicode separators and the BOM, not just ASCII space.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// ValidationError carries a message that is safe to show to the submitter.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingFields   = &ValidationError{Message: "Missing required fields: client_id, name, phone, message"}
	ErrNameTooShort    = &ValidationError{Message: "Name must be at least 2 characters"}
	ErrPhoneTooShort   = &ValidationError{Message: "Phone must be at least 7 characters"}
	ErrMessageTooLong  = &ValidationError{Message: "Message must not exceed 2000 characters"}
	ErrInvalidEmail    = &ValidationError{Message: "Invalid email format"}
	requiredFieldNames = []string{dto.FieldClientID, dto.FieldName, dto.FieldPhone, dto.FieldMessage}
)

// ValidateSubmission applies the field rules in a fixed order and returns the
// first one that fails.
func ValidateSubmission(submission dto.Submission) error {
	for _, field := range requiredFieldNames {
		if submission.Get(field) == "" {
			return ErrMissingFields
		}
	}

	if textLength(trimField(submission.Get(dto.FieldName))) < minNameLength {
		return ErrNameTooShort
	}
	if textLength(trimField(submission.Get(dto.FieldPhone))) < minPhoneLength {
		return ErrPhoneTooShort
	}
	if textLength(trimField(submission.Get(dto.FieldMessage))) > maxMessageLength {
		return ErrMessageTooLong
	}

	if email := trimField(submission.Get(dto.FieldEmail)); email != "" {
		if !emailPattern.MatchString(email) {
			return ErrInvalidEmail
		}
	}

	return nil
}

// textLength counts UTF-16 code units, which is what browser-side maxlength
// limits count.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
			continue
		}
		n++
	}
	return n
}
