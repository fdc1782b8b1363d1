package models

import "time"

// WebhookEvent is the log entry written for every verified webhook delivery.
type WebhookEvent struct {
	ID             string                 `json:"id" firestore:"-"`
	Event          string                 `json:"event" firestore:"event"`
	Reference      string                 `json:"reference,omitempty" firestore:"reference,omitempty"`
	Email          string                 `json:"email,omitempty" firestore:"email,omitempty"`
	Amount         float64                `json:"amount,omitempty" firestore:"amount,omitempty"`
	Currency       string                 `json:"currency,omitempty" firestore:"currency,omitempty"`
	Classification string                 `json:"classification,omitempty" firestore:"classification,omitempty"` // donation, subscription, ignored
	Rule           string                 `json:"rule,omitempty" firestore:"rule,omitempty"`
	PaymentType    string                 `json:"paymentType,omitempty" firestore:"paymentType,omitempty"`
	Effects        []EffectRecord         `json:"effects,omitempty" firestore:"effects,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
	ReceivedAt     time.Time              `json:"receivedAt" firestore:"receivedAt"`
}

// EffectRecord is the stored form of one side-effect result.
type EffectRecord struct {
	Effect   string `json:"effect" firestore:"effect"`
	RecordID string `json:"recordId,omitempty" firestore:"recordId,omitempty"`
	OK       bool   `json:"ok" firestore:"ok"`
	Error    string `json:"error,omitempty" firestore:"error,omitempty"`
}
