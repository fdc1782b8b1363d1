package db

import (
	"context"
	"errors"
	"fmt"

	"paystack-sync/internal/airtable"
	"paystack-sync/internal/models"
)

// Subscriptions table columns. Created At is computed by Airtable and never written.
const (
	SubscriptionName           = "Name"
	SubscriptionSubscriber     = "Subscriber"
	SubscriptionEmail          = "Email"
	SubscriptionWhatsAppNumber = "WhatsApp Number"
	SubscriptionPackage        = "Subscription Package"
	SubscriptionAmountPaid     = "Amount Paid"
	SubscriptionExpirationDate = "Expiration Date"
	SubscriptionCreatedAt      = "Created At"
)

type airtableSubscriptionRepository struct {
	table *airtable.Table
}

// NewAirtableSubscriptionRepository creates a SubscriptionRepository on table.
func NewAirtableSubscriptionRepository(table *airtable.Table) SubscriptionRepository {
	return &airtableSubscriptionRepository{table: table}
}

func (r *airtableSubscriptionRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	if id == "" {
		return nil, errors.New("subscription id cannot be empty for GetByID operation")
	}
	rec, err := r.table.Find(ctx, id)
	if err != nil {
		return nil, wrapFind(err, "subscription", id)
	}
	return subscriptionFromRecord(rec), nil
}

func (r *airtableSubscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error) {
	rec, err := r.table.Create(ctx, subscriptionFields(subscription))
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return subscriptionFromRecord(rec), nil
}

func (r *airtableSubscriptionRepository) Update(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error) {
	if subscription.ID == "" {
		return nil, errors.New("subscription ID cannot be empty for Update operation")
	}
	rec, err := r.table.Update(ctx, subscription.ID, subscriptionFields(subscription))
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription '%s': %w", subscription.ID, err)
	}
	return subscriptionFromRecord(rec), nil
}

func subscriptionFields(s *models.Subscription) map[string]interface{} {
	f := fieldSet{}
	f.str(SubscriptionName, s.Name)
	f.links(SubscriptionSubscriber, s.SubscriberIDs)
	f.str(SubscriptionEmail, s.Email)
	f.str(SubscriptionWhatsAppNumber, s.WhatsAppNumber)
	f.str(SubscriptionPackage, string(s.Package))
	f.num(SubscriptionAmountPaid, s.AmountPaid)
	f.str(SubscriptionExpirationDate, s.ExpirationDate)
	return f
}

func subscriptionFromRecord(rec *airtable.Record) *models.Subscription {
	fields := rec.Fields
	return &models.Subscription{
		ID:             rec.ID,
		Name:           fieldString(fields, SubscriptionName),
		SubscriberIDs:  fieldLinks(fields, SubscriptionSubscriber),
		Email:          fieldString(fields, SubscriptionEmail),
		WhatsAppNumber: fieldString(fields, SubscriptionWhatsAppNumber),
		Package:        models.SubscriptionPackage(fieldString(fields, SubscriptionPackage)),
		AmountPaid:     fieldFloat(fields, SubscriptionAmountPaid),
		ExpirationDate: fieldString(fields, SubscriptionExpirationDate),
		CreatedAt:      fieldString(fields, SubscriptionCreatedAt),
	}
}
