package db

import (
	"context"

	"paystack-sync/internal/models"
)

// SubscriberRepository defines storage operations on the Subscribers table.
type SubscriberRepository interface {
	GetByID(ctx context.Context, id string) (*models.Subscriber, error)
	FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) // ErrNotFound when absent
	FindByPhone(ctx context.Context, phone string) (*models.Subscriber, error) // ErrNotFound when absent
	Create(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error)
	// Update writes only the non-empty fields of subscriber.
	Update(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error)
	// SetSubscriptionLinks replaces the subscriber's Subscriptions link list.
	SetSubscriptionLinks(ctx context.Context, subscriberID string, subscriptionIDs []string) error
}

// SubscriptionRepository defines storage operations on the Subscriptions table.
type SubscriptionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	Create(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error)
	Update(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error)
}

// DonationRepository defines storage operations on the Donations table.
type DonationRepository interface {
	FindByReference(ctx context.Context, reference string) (*models.Donation, error) // ErrNotFound when absent
	Create(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	Update(ctx context.Context, donation *models.Donation) (*models.Donation, error)
}

// WebhookEventRepository defines storage for the webhook delivery log.
type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.WebhookEvent) (string, error)
	ListRecent(ctx context.Context, limit int) ([]*models.WebhookEvent, error)
}
