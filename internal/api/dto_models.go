package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WebhookResponse is the body Paystack receives for every delivery.
type WebhookResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// PagedResponse wraps a proxied Paystack list.
type PagedResponse struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}
