package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"paystack-sync/internal/db"
	"paystack-sync/internal/models"
	"paystack-sync/internal/paystack"
	"paystack-sync/pkg/cache"
)

var (
	ErrPaystackClient   = errors.New("paystack request failed")
	ErrEventLogDisabled = errors.New("webhook event log is not configured")
	ErrInvalidSyncRange = errors.New("invalid sync date range")
)

const (
	defaultSyncPerPage  = 100
	defaultSyncMaxPages = 20
	defaultEventsLimit  = 50
)

// SyncRequest selects the successful transactions to replay into Airtable.
// From and To are optional ISO dates, passed to Paystack as-is once validated.
type SyncRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	PerPage  int    `json:"perPage"`
	MaxPages int    `json:"maxPages"`
}

// SyncReport summarizes a transaction replay.
type SyncReport struct {
	Pages        int               `json:"pages"`
	Transactions int               `json:"transactions"`
	Ignored      int               `json:"ignored"`
	Donations    []BatchItemResult `json:"donations"`
	Subscribers  []BatchItemResult `json:"subscribers"`
	Failed       int               `json:"failed"`
}

// adminService implements the AdminService interface.
type adminService struct {
	paystack    PaystackAPI
	cache       cache.Cache // nil disables caching
	cacheTTL    time.Duration
	donations   DonationService
	subscribers SubscriberService
	events      db.WebhookEventRepository // nil when Firestore is not configured
	logger      *zap.Logger
}

// NewAdminService creates a new AdminService. listCache and events may be nil.
func NewAdminService(
	api PaystackAPI,
	listCache cache.Cache,
	cacheTTL time.Duration,
	donations DonationService,
	subscribers SubscriberService,
	events db.WebhookEventRepository,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		paystack:    api,
		cache:       listCache,
		cacheTTL:    cacheTTL,
		donations:   donations,
		subscribers: subscribers,
		events:      events,
		logger:      logger,
	}
}

func listCachePrefix(resource string) string {
	return "paystack:" + resource + ":"
}

func listCacheKey(resource string, params paystack.ListParams) string {
	return listCachePrefix(resource) + params.Query().Encode()
}

// cached serves key from the cache or fills it with load. Cache errors only
// cost a round trip to Paystack.
func cached[T any](ctx context.Context, s *adminService, key string, load func() (*T, error)) (*T, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Paystack list cache read failed", zap.String("key", key), zap.Error(err))
		} else if raw != "" {
			var out T
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				return &out, nil
			}
			s.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
		}
	}

	out, err := load()
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if body, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, key, string(body), s.cacheTTL); err != nil {
				s.logger.Warn("Paystack list cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return out, nil
}

func (s *adminService) ListSubscriptions(ctx context.Context, params paystack.ListParams) (*paystack.SubscriptionList, error) {
	return cached(ctx, s, listCacheKey("subscriptions", params), func() (*paystack.SubscriptionList, error) {
		list, err := s.paystack.ListSubscriptions(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("%w: list subscriptions: %w", ErrPaystackClient, err)
		}
		return list, nil
	})
}

func (s *adminService) ListTransactions(ctx context.Context, params paystack.ListParams) (*paystack.TransactionList, error) {
	return cached(ctx, s, listCacheKey("transactions", params), func() (*paystack.TransactionList, error) {
		list, err := s.paystack.ListTransactions(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("%w: list transactions: %w", ErrPaystackClient, err)
		}
		return list, nil
	})
}

// SyncTransactions pages through successful transactions, classifies each
// with the webhook rules and batch-upserts donations and subscribers.
// Subscriptions are not reconciled here: replays would renew rows a second time.
func (s *adminService) SyncTransactions(ctx context.Context, req SyncRequest) (*SyncReport, error) {
	if err := validateSyncRange(req.From, req.To); err != nil {
		return nil, err
	}
	if req.PerPage <= 0 {
		req.PerPage = defaultSyncPerPage
	}
	if req.MaxPages <= 0 {
		req.MaxPages = defaultSyncMaxPages
	}

	report := &SyncReport{}
	var (
		donations   []*models.Donation
		subscribers []*models.Subscriber
	)
	for page := 1; page <= req.MaxPages; page++ {
		list, err := s.paystack.ListTransactions(ctx, paystack.ListParams{
			Page:    page,
			PerPage: req.PerPage,
			Status:  "success",
			From:    req.From,
			To:      req.To,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: list transactions page %d: %w", ErrPaystackClient, page, err)
		}
		report.Pages++

		for _, tx := range list.Data {
			report.Transactions++
			c := Classify(tx)
			switch c.Kind {
			case KindDonation:
				donations = append(donations, DonationFromTransaction(tx))
			case KindSubscription:
				subscribers = append(subscribers, SubscriberFromTransaction(tx, c.PaymentType))
			default:
				report.Ignored++
			}
		}

		if len(list.Data) < req.PerPage || (list.Meta.PageCount > 0 && page >= int(list.Meta.PageCount)) {
			break
		}
	}

	report.Donations = s.donations.BatchCreateOrUpdate(ctx, donations)
	report.Subscribers = s.subscribers.BatchCreateOrUpdate(ctx, subscribers)
	for _, results := range [][]BatchItemResult{report.Donations, report.Subscribers} {
		for _, r := range results {
			if r.Error != "" {
				report.Failed++
			}
		}
	}

	s.invalidateTransactionLists(ctx)

	s.logger.Info("Transaction sync finished",
		zap.Int("pages", report.Pages),
		zap.Int("transactions", report.Transactions),
		zap.Int("donations", len(report.Donations)),
		zap.Int("subscribers", len(report.Subscribers)),
		zap.Int("ignored", report.Ignored),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// validateSyncRange checks each bound on its own; ordering is only checked
// when both are present.
func validateSyncRange(fromRaw, toRaw string) error {
	var from, to time.Time
	if fromRaw != "" {
		t, ok := parseTimestamp(fromRaw)
		if !ok {
			return fmt.Errorf("%w: from=%q is not a date", ErrInvalidSyncRange, fromRaw)
		}
		from = t
	}
	if toRaw != "" {
		t, ok := parseTimestamp(toRaw)
		if !ok {
			return fmt.Errorf("%w: to=%q is not a date", ErrInvalidSyncRange, toRaw)
		}
		to = t
	}
	if fromRaw != "" && toRaw != "" && to.Before(from) {
		return fmt.Errorf("%w: to=%q is before from=%q", ErrInvalidSyncRange, toRaw, fromRaw)
	}
	return nil
}

// invalidateTransactionLists drops cached transaction pages after a sync.
// Failures only leave entries to expire on their TTL.
func (s *adminService) invalidateTransactionLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	prefix := listCachePrefix("transactions")
	keys, err := s.cache.Keys(ctx, prefix)
	if err != nil {
		s.logger.Warn("Paystack list cache scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Paystack list cache invalidation failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}

func (s *adminService) ListWebhookEvents(ctx context.Context, limit int) ([]*models.WebhookEvent, error) {
	if s.events == nil {
		return nil, ErrEventLogDisabled
	}
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	events, err := s.events.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook events: %w", err)
	}
	return events, nil
}
