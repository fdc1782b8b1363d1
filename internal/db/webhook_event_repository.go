package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"paystack-sync/internal/models"
)

const webhookEventsCollection = "paystackWebhookEvents"

const maxWebhookEventsPage = 200

// firestoreWebhookEventRepository implements WebhookEventRepository using Firestore.
type firestoreWebhookEventRepository struct {
	client *firestore.Client
}

// NewFirestoreWebhookEventRepository creates a new instance of firestoreWebhookEventRepository.
func NewFirestoreWebhookEventRepository(client *firestore.Client, logger *zap.Logger) WebhookEventRepository {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for WebhookEventRepository.")
	}
	return &firestoreWebhookEventRepository{client: client}
}

// Create stores event under its ID, or an auto-generated one when ID is empty.
func (r *firestoreWebhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) (string, error) {
	if event == nil {
		return "", errors.New("webhook event cannot be nil")
	}
	col := r.client.Collection(webhookEventsCollection)
	docRef := col.NewDoc()
	if event.ID != "" {
		docRef = col.Doc(event.ID)
	}
	event.ID = docRef.ID

	if _, err := docRef.Create(ctx, event); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", fmt.Errorf("webhook event '%s' already exists: %w", event.ID, err)
		}
		return "", fmt.Errorf("failed to create webhook event: %w", err)
	}
	return docRef.ID, nil
}

// ListRecent returns the newest events first.
func (r *firestoreWebhookEventRepository) ListRecent(ctx context.Context, limit int) ([]*models.WebhookEvent, error) {
	if limit <= 0 || limit > maxWebhookEventsPage {
		limit = maxWebhookEventsPage
	}
	iter := r.client.Collection(webhookEventsCollection).
		OrderBy("receivedAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var events []*models.WebhookEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate webhook events: %w", err)
		}
		var event models.WebhookEvent
		if err := doc.DataTo(&event); err != nil {
			return nil, fmt.Errorf("failed to decode webhook event '%s': %w", doc.Ref.ID, err)
		}
		event.ID = doc.Ref.ID
		events = append(events, &event)
	}
	return events, nil
}
