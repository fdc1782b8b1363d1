package db

import (
	"context"
	"errors"
	"fmt"

	"paystack-sync/internal/airtable"
	"paystack-sync/internal/models"
)

// Subscribers table columns.
const (
	SubscriberFullName             = "Full Name"
	SubscriberEmail                = "Email"
	SubscriberPhone                = "Phone"
	SubscriberTransactionReference = "Transaction Reference"
	SubscriberAmount               = "Amount"
	SubscriberCurrency             = "Currency"
	SubscriberStatus               = "Status"
	SubscriberPaymentType          = "Payment Type"
	SubscriberPaidAt               = "Paid At"
	SubscriberSubscriptionCode     = "Subscription Code"
	SubscriberPlanCode             = "Plan Code"
	SubscriberCustomerCode         = "Customer Code"
	SubscriberCreatedAt            = "Created At"
	SubscriberSubscriptions        = "Subscriptions"
)

// airtableSubscriberRepository implements SubscriberRepository on an Airtable table.
type airtableSubscriberRepository struct {
	table *airtable.Table
}

// NewAirtableSubscriberRepository creates a SubscriberRepository on table.
func NewAirtableSubscriberRepository(table *airtable.Table) SubscriberRepository {
	return &airtableSubscriberRepository{table: table}
}

func (r *airtableSubscriberRepository) GetByID(ctx context.Context, id string) (*models.Subscriber, error) {
	if id == "" {
		return nil, errors.New("subscriber id cannot be empty for GetByID operation")
	}
	rec, err := r.table.Find(ctx, id)
	if err != nil {
		return nil, wrapFind(err, "subscriber", id)
	}
	return subscriberFromRecord(rec), nil
}

func (r *airtableSubscriberRepository) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	if email == "" {
		return nil, fmt.Errorf("empty email: %w", ErrNotFound)
	}
	return r.findOne(ctx, airtable.FieldEqualsFold(SubscriberEmail, email), email)
}

func (r *airtableSubscriberRepository) FindByPhone(ctx context.Context, phone string) (*models.Subscriber, error) {
	if phone == "" {
		return nil, fmt.Errorf("empty phone: %w", ErrNotFound)
	}
	return r.findOne(ctx, airtable.FieldEquals(SubscriberPhone, phone), phone)
}

func (r *airtableSubscriberRepository) findOne(ctx context.Context, formula, key string) (*models.Subscriber, error) {
	recs, err := r.table.Select(ctx, airtable.SelectOptions{FilterByFormula: formula, MaxRecords: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriber '%s': %w", key, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("subscriber '%s' not found: %w", key, ErrNotFound)
	}
	return subscriberFromRecord(recs[0]), nil
}

func (r *airtableSubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error) {
	rec, err := r.table.Create(ctx, subscriberFields(subscriber))
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}
	return subscriberFromRecord(rec), nil
}

func (r *airtableSubscriberRepository) Update(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error) {
	if subscriber.ID == "" {
		return nil, errors.New("subscriber ID cannot be empty for Update operation")
	}
	rec, err := r.table.Update(ctx, subscriber.ID, subscriberFields(subscriber))
	if err != nil {
		return nil, fmt.Errorf("failed to update subscriber '%s': %w", subscriber.ID, err)
	}
	return subscriberFromRecord(rec), nil
}

func (r *airtableSubscriberRepository) SetSubscriptionLinks(ctx context.Context, subscriberID string, subscriptionIDs []string) error {
	if subscriptionIDs == nil {
		subscriptionIDs = []string{}
	}
	_, err := r.table.Update(ctx, subscriberID, map[string]interface{}{SubscriberSubscriptions: subscriptionIDs})
	if err != nil {
		return fmt.Errorf("failed to link subscriptions to subscriber '%s': %w", subscriberID, err)
	}
	return nil
}

func subscriberFields(s *models.Subscriber) map[string]interface{} {
	f := fieldSet{}
	f.str(SubscriberFullName, s.FullName)
	f.str(SubscriberEmail, s.Email)
	f.str(SubscriberPhone, s.Phone)
	f.str(SubscriberTransactionReference, s.TransactionReference)
	f.num(SubscriberAmount, s.Amount)
	f.str(SubscriberCurrency, s.Currency)
	f.str(SubscriberStatus, s.Status)
	f.str(SubscriberPaymentType, s.PaymentType)
	f.str(SubscriberPaidAt, s.PaidAt)
	f.str(SubscriberSubscriptionCode, s.SubscriptionCode)
	f.str(SubscriberPlanCode, s.PlanCode)
	f.str(SubscriberCustomerCode, s.CustomerCode)
	f.str(SubscriberCreatedAt, s.CreatedAt)
	f.links(SubscriberSubscriptions, s.SubscriptionIDs)
	return f
}

func subscriberFromRecord(rec *airtable.Record) *models.Subscriber {
	fields := rec.Fields
	return &models.Subscriber{
		ID:                   rec.ID,
		FullName:             fieldString(fields, SubscriberFullName),
		Email:                fieldString(fields, SubscriberEmail),
		Phone:                fieldString(fields, SubscriberPhone),
		TransactionReference: fieldString(fields, SubscriberTransactionReference),
		Amount:               fieldFloat(fields, SubscriberAmount),
		Currency:             fieldString(fields, SubscriberCurrency),
		Status:               fieldString(fields, SubscriberStatus),
		PaymentType:          fieldString(fields, SubscriberPaymentType),
		PaidAt:               fieldString(fields, SubscriberPaidAt),
		SubscriptionCode:     fieldString(fields, SubscriberSubscriptionCode),
		PlanCode:             fieldString(fields, SubscriberPlanCode),
		CustomerCode:         fieldString(fields, SubscriberCustomerCode),
		CreatedAt:            fieldString(fields, SubscriberCreatedAt),
		SubscriptionIDs:      fieldLinks(fields, SubscriberSubscriptions),
	}
}
