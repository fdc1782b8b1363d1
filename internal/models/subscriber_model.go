package models

// Subscriber is a row of the Subscribers table. Email is the identity key,
// phone the fallback for phone-only checkouts.
type Subscriber struct {
	ID                   string   `json:"id"`
	FullName             string   `json:"fullName,omitempty"`
	Email                string   `json:"email,omitempty"`
	Phone                string   `json:"phone,omitempty"`
	TransactionReference string   `json:"transactionReference,omitempty"`
	Amount               float64  `json:"amount,omitempty"` // major currency unit
	Currency             string   `json:"currency,omitempty"`
	Status               string   `json:"status,omitempty"`
	PaymentType          string   `json:"paymentType,omitempty"`
	PaidAt               string   `json:"paidAt,omitempty"`
	SubscriptionCode     string   `json:"subscriptionCode,omitempty"`
	PlanCode             string   `json:"planCode,omitempty"`
	CustomerCode         string   `json:"customerCode,omitempty"`
	CreatedAt            string   `json:"createdAt,omitempty"`
	SubscriptionIDs      []string `json:"subscriptionIds,omitempty"` // linked Subscriptions rows
}
