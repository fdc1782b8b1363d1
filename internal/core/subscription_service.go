package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"paystack-sync/internal/db"
	"paystack-sync/internal/models"
)

var ErrSubscriptionSync = errors.New("subscription sync failed")

// subscriptionService implements the SubscriptionService interface.
type subscriptionService struct {
	subscriptions db.SubscriptionRepository
	subscribers   db.SubscriberRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewSubscriptionService creates the subscription reconciler.
func NewSubscriptionService(subscriptions db.SubscriptionRepository, subscribers db.SubscriberRepository, logger *zap.Logger) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		subscribers:   subscribers,
		logger:        logger,
		now:           time.Now,
	}
}

// latestExpired returns the linked row with the greatest expiration date
// strictly before today, or nil when none has expired.
func latestExpired(rows []*models.Subscription, today time.Time) *models.Subscription {
	var (
		best    *models.Subscription
		bestExp time.Time
	)
	for _, row := range rows {
		exp, ok := parseTimestamp(row.ExpirationDate)
		if !ok {
			continue
		}
		exp = startOfDay(exp)
		if !exp.Before(today) {
			continue
		}
		if best == nil || exp.After(bestExp) {
			best, bestExp = row, exp
		}
	}
	return best
}

func (s *subscriptionService) linkedSubscriptions(ctx context.Context, ids []string) []*models.Subscription {
	rows := make([]*models.Subscription, 0, len(ids))
	for _, id := range ids {
		row, err := s.subscriptions.GetByID(ctx, id)
		if err != nil {
			// A dangling link cannot be reused; skip it.
			s.logger.Warn("Linked subscription could not be loaded", zap.String("subscriptionID", id), zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// CreateOrUpdate writes subscription for subscriberID. The subscriber's most
// recently expired subscription is renewed in place; when none has expired a
// new row is created and appended to the subscriber's links. Linking is
// best-effort: a failure there is logged and the created row is returned.
func (s *subscriptionService) CreateOrUpdate(ctx context.Context, subscription *models.Subscription, subscriberID string) (*models.Subscription, bool, error) {
	if subscription == nil {
		return nil, false, fmt.Errorf("%w: nil subscription", ErrSubscriptionSync)
	}
	fields := *subscription
	fields.ExpirationDate = FormatDate(subscription.ExpirationDate)
	fields.CreatedAt = ""

	if subscriberID == "" {
		fields.SubscriberIDs = nil
		created, err := s.subscriptions.Create(ctx, &fields)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrSubscriptionSync, err)
		}
		s.logger.Info("Subscription created without subscriber", zap.String("recordID", created.ID))
		return created, true, nil
	}

	subscriber, err := s.subscribers.GetByID(ctx, subscriberID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: load subscriber '%s': %w", ErrSubscriptionSync, subscriberID, err)
	}

	today := startOfDay(s.now())
	if expired := latestExpired(s.linkedSubscriptions(ctx, subscriber.SubscriptionIDs), today); expired != nil {
		fields.ID = expired.ID
		fields.SubscriberIDs = nil // already linked
		updated, err := s.subscriptions.Update(ctx, &fields)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrSubscriptionSync, err)
		}
		s.logger.Info("Expired subscription renewed",
			zap.String("recordID", updated.ID),
			zap.String("subscriberID", subscriberID),
			zap.String("previousExpiration", expired.ExpirationDate),
			zap.String("expirationDate", updated.ExpirationDate),
		)
		return updated, false, nil
	}

	fields.ID = ""
	fields.SubscriberIDs = []string{subscriberID}
	created, err := s.subscriptions.Create(ctx, &fields)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrSubscriptionSync, err)
	}

	links := make([]string, 0, len(subscriber.SubscriptionIDs)+1)
	links = append(links, subscriber.SubscriptionIDs...)
	links = append(links, created.ID)
	if err := s.subscribers.SetSubscriptionLinks(ctx, subscriberID, links); err != nil {
		s.logger.Error("Failed to link new subscription to subscriber",
			zap.String("recordID", created.ID),
			zap.String("subscriberID", subscriberID),
			zap.Error(err),
		)
	}
	s.logger.Info("Subscription created",
		zap.String("recordID", created.ID),
		zap.String("subscriberID", subscriberID),
		zap.String("expirationDate", created.ExpirationDate),
	)
	return created, true, nil
}
