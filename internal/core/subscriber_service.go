package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"paystack-sync/internal/db"
	"paystack-sync/internal/models"
)

var (
	ErrSubscriberIdentity = errors.New("subscriber has neither email nor phone")
	ErrSubscriberSync     = errors.New("subscriber sync failed")
)

// subscriberService implements the SubscriberService interface.
type subscriberService struct {
	repo   db.SubscriberRepository
	logger *zap.Logger
}

// NewSubscriberService creates a new SubscriberService instance.
func NewSubscriberService(repo db.SubscriberRepository, logger *zap.Logger) SubscriberService {
	return &subscriberService{repo: repo, logger: logger}
}

// findExisting looks the subscriber up by email, then by phone.
func (s *subscriberService) findExisting(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error) {
	if subscriber.Email != "" {
		existing, err := s.repo.FindByEmail(ctx, subscriber.Email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
	}
	if subscriber.Phone != "" {
		existing, err := s.repo.FindByPhone(ctx, subscriber.Phone)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
	}
	return nil, db.ErrNotFound
}

func (s *subscriberService) CreateOrUpdate(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, bool, error) {
	if subscriber == nil || (subscriber.Email == "" && subscriber.Phone == "") {
		return nil, false, ErrSubscriberIdentity
	}

	existing, err := s.findExisting(ctx, subscriber)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("%w: lookup: %w", ErrSubscriberSync, err)
	}

	if existing == nil {
		created, err := s.repo.Create(ctx, subscriber)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrSubscriberSync, err)
		}
		s.logger.Info("Subscriber created", zap.String("recordID", created.ID), zap.String("email", created.Email))
		return created, true, nil
	}

	patch := *subscriber
	patch.ID = existing.ID
	patch.CreatedAt = "" // first-seen timestamp is kept
	patch.SubscriptionIDs = nil
	updated, err := s.repo.Update(ctx, &patch)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrSubscriberSync, err)
	}
	if len(updated.SubscriptionIDs) == 0 {
		updated.SubscriptionIDs = existing.SubscriptionIDs
	}
	s.logger.Info("Subscriber updated", zap.String("recordID", updated.ID), zap.String("email", updated.Email))
	return updated, false, nil
}

// BatchCreateOrUpdate upserts each subscriber in turn. A failed item is
// reported in its result and does not stop the batch.
func (s *subscriberService) BatchCreateOrUpdate(ctx context.Context, subscribers []*models.Subscriber) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(subscribers))
	for _, sub := range subscribers {
		key := ""
		if sub != nil {
			key = sub.Email
			if key == "" {
				key = sub.Phone
			}
		}
		saved, created, err := s.CreateOrUpdate(ctx, sub)
		recordID := ""
		if saved != nil {
			recordID = saved.ID
		}
		if err != nil {
			s.logger.Warn("Batch subscriber upsert failed", zap.String("key", key), zap.Error(err))
		}
		results = append(results, batchResult(key, recordID, created, err))
	}
	return results
}
