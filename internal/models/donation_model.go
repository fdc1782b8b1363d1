package models

// Donation is a row of the Donations table. It is never linked to a subscriber.
type Donation struct {
	ID               string  `json:"id"`
	Email            string  `json:"email,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	Amount           float64 `json:"amount"`
	PaymentDate      string  `json:"paymentDate,omitempty"` // YYYY-MM-DD
	PaymentReference string  `json:"paymentReference,omitempty"`
}
