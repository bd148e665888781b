package entity

// Lead is a validated contact submission. The honeypot field has no place here.
type Lead struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	Email    string `json:"email,omitempty"`
	Service  string `json:"service,omitempty"`
	Source   string `json:"source,omitempty"`
	UTM      string `json:"utm,omitempty"`
}

// ForwardEnvelope is the payload relayed to the downstream webhook.
type ForwardEnvelope struct {
	Lead
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	Timestamp string `json:"timestamp"`
}
