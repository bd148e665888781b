package service

import "github.com/octobees/lead-gateway/internal/dto"

// IsSpam reports whether the honeypot field was filled in.
func IsSpam(submission dto.Submission) bool {
	return trimField(submission.Get(dto.FieldHoneypot)) != ""
}
