package dto

// Form field names accepted on POST /submit.
const (
	FieldClientID = "client_id"
	FieldName     = "name"
	FieldPhone    = "phone"
	FieldEmail    = "email"
	FieldMessage  = "message"
	FieldService  = "service"
	FieldSource   = "source"
	FieldUTM      = "utm"
	// FieldHoneypot is hidden from humans; bots tend to fill it in.
	FieldHoneypot = "website"
)

// Submission is a decoded form body before any validation. Every field the
// caller sent is kept, coerced to a string.
type Submission map[string]string

// Get returns the value for key, or "" when it was not submitted.
func (s Submission) Get(key string) string {
	return s[key]
}
