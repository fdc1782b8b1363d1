package core

import (
	"context"

	"paystack-sync/internal/models"
	"paystack-sync/internal/paystack"
	"paystack-sync/pkg/mailer"
)

// SubscriberService defines upserts on the Subscribers table.
type SubscriberService interface {
	// CreateOrUpdate matches on email, then phone. The bool reports whether a row was created.
	CreateOrUpdate(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, bool, error)
	BatchCreateOrUpdate(ctx context.Context, subscribers []*models.Subscriber) []BatchItemResult
}

// SubscriptionService defines the subscription reconciler.
type SubscriptionService interface {
	// CreateOrUpdate reuses the subscriber's most recently expired row or appends a new one.
	CreateOrUpdate(ctx context.Context, subscription *models.Subscription, subscriberID string) (*models.Subscription, bool, error)
}

// DonationService defines upserts on the Donations table and the donor receipt.
type DonationService interface {
	CreateOrUpdate(ctx context.Context, donation *models.Donation) (*models.Donation, bool, error)
	BatchCreateOrUpdate(ctx context.Context, donations []*models.Donation) []BatchItemResult
	SendConfirmation(ctx context.Context, receipt mailer.DonationReceipt) error
}

// WebhookService verifies and processes Paystack webhook deliveries.
type WebhookService interface {
	HandlePaystackWebhook(ctx context.Context, signature string, payload []byte) (*WebhookOutcome, error)
}

// AdminService backs the authenticated admin API.
type AdminService interface {
	ListSubscriptions(ctx context.Context, params paystack.ListParams) (*paystack.SubscriptionList, error)
	ListTransactions(ctx context.Context, params paystack.ListParams) (*paystack.TransactionList, error)
	SyncTransactions(ctx context.Context, req SyncRequest) (*SyncReport, error)
	ListWebhookEvents(ctx context.Context, limit int) ([]*models.WebhookEvent, error)
}

// EmailSender delivers donation receipts. *mailer.Mailer satisfies it.
type EmailSender interface {
	SendDonationConfirmation(ctx context.Context, receipt mailer.DonationReceipt) error
}

// PaystackAPI is the part of the Paystack REST API the admin service reads.
type PaystackAPI interface {
	ListTransactions(ctx context.Context, params paystack.ListParams) (*paystack.TransactionList, error)
	ListSubscriptions(ctx context.Context, params paystack.ListParams) (*paystack.SubscriptionList, error)
}
