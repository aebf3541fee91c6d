package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message
	Details string `json:"details,omitempty"` // More specific details, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// LoginResponse carries a freshly issued company-admin token.
type LoginResponse struct {
	Token     string `json:"token"`
	CompanyID string `json:"companyId"`
	Name      string `json:"companyName"`
}

// SessionURLResponse carries a hosted Stripe session URL.
type SessionURLResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a billing webhook delivery.
type WebhookResponse struct {
	Received bool `json:"received"`
	Success  bool `json:"success"`
}
