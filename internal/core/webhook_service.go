package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"paystack-sync/internal/crypto"
	"paystack-sync/internal/db"
	"paystack-sync/internal/models"
	"paystack-sync/internal/paystack"
	"paystack-sync/pkg/mailer"
	"paystack-sync/pkg/messagequeue"
)

var (
	ErrWebhookSignatureMissing = errors.New("missing paystack signature header")
	ErrWebhookSecretMissing    = errors.New("paystack secret key is not configured")
	ErrWebhookSignature        = errors.New("invalid paystack signature")
	ErrWebhookPayload          = errors.New("invalid webhook payload")
)

// WebhookOutcome summarizes what a verified delivery did.
type WebhookOutcome struct {
	EventID        string
	Event          string
	Reference      string
	Classification *Classification // nil for events other than charge.success
	Effects        []EffectResult
	Message        string
}

// WebhookOption configures optional collaborators of the webhook service.
type WebhookOption func(*webhookService)

// WithEventLog stores one document per processed delivery.
func WithEventLog(repo db.WebhookEventRepository) WebhookOption {
	return func(s *webhookService) { s.events = repo }
}

// WithOutcomePublisher publishes each outcome as JSON to queueName.
func WithOutcomePublisher(queue messagequeue.MessageQueue, queueName string) WebhookOption {
	return func(s *webhookService) {
		s.queue = queue
		s.queueName = queueName
	}
}

// webhookService implements the WebhookService interface.
type webhookService struct {
	secretKey     string
	subscribers   SubscriberService
	subscriptions SubscriptionService
	donations     DonationService
	events        db.WebhookEventRepository
	queue         messagequeue.MessageQueue
	queueName     string
	logger        *zap.Logger
	now           func() time.Time
}

// NewWebhookService creates the Paystack webhook processor.
func NewWebhookService(
	secretKey string,
	subscribers SubscriberService,
	subscriptions SubscriptionService,
	donations DonationService,
	logger *zap.Logger,
	opts ...WebhookOption,
) WebhookService {
	s := &webhookService{
		secretKey:     secretKey,
		subscribers:   subscribers,
		subscriptions: subscriptions,
		donations:     donations,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandlePaystackWebhook verifies the signature over the raw body, decodes the
// event and runs its side effects. Side-effect failures are reported in the
// outcome, never as an error: once the signature checks out the delivery is
// acknowledged.
func (s *webhookService) HandlePaystackWebhook(ctx context.Context, signature string, payload []byte) (*WebhookOutcome, error) {
	if signature == "" {
		return nil, ErrWebhookSignatureMissing
	}
	if s.secretKey == "" {
		s.logger.Error("Webhook received but PAYSTACK_SECRET_KEY is not set")
		return nil, ErrWebhookSecretMissing
	}
	if err := crypto.VerifyHMACSHA512(s.secretKey, payload, signature); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	event, err := paystack.ParseEvent(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookPayload, err)
	}

	outcome := &WebhookOutcome{EventID: uuid.NewString(), Event: event.EventType()}
	logEntry := &models.WebhookEvent{ID: outcome.EventID, Event: outcome.Event, ReceivedAt: s.now().UTC()}

	switch ev := event.(type) {
	case *paystack.ChargeSuccessEvent:
		s.handleChargeSuccess(ctx, ev.Data, outcome)
		fillChargeDetails(logEntry, ev.Data)
	case *paystack.ChargeFailedEvent:
		outcome.Reference = ev.Data.Reference
		outcome.Message = "Failed charge acknowledged"
		fillChargeDetails(logEntry, ev.Data)
	case *paystack.SubscriptionCreateEvent:
		outcome.Message = "Subscription creation acknowledged"
		logEntry.Email = ev.Data.Customer.Email
		logEntry.Details = map[string]interface{}{"subscriptionCode": ev.Data.SubscriptionCode, "planCode": ev.Data.Plan.PlanCode}
	case *paystack.SubscriptionDisableEvent:
		outcome.Message = "Subscription disable acknowledged"
		logEntry.Email = ev.Data.Customer.Email
		logEntry.Details = map[string]interface{}{"subscriptionCode": ev.Data.SubscriptionCode, "status": ev.Data.Status}
	default:
		outcome.Message = "Event acknowledged"
	}

	if c := outcome.Classification; c != nil {
		logEntry.Classification = string(c.Kind)
		logEntry.Rule = c.Rule
		logEntry.PaymentType = c.PaymentType
	}
	for _, effect := range outcome.Effects {
		logEntry.Effects = append(logEntry.Effects, effect.record())
	}

	s.logOutcome(outcome)
	s.recordEvent(ctx, logEntry)
	s.publish(logEntry)
	return outcome, nil
}

func fillChargeDetails(entry *models.WebhookEvent, tx paystack.Transaction) {
	entry.Reference = tx.Reference
	entry.Email = emailOf(tx)
	entry.Amount = SubunitsToMajor(tx.Amount)
	entry.Currency = tx.Currency
	if tx.Plan.PlanCode != "" {
		entry.Details = map[string]interface{}{"planCode": tx.Plan.PlanCode}
	}
}

func (s *webhookService) handleChargeSuccess(ctx context.Context, tx paystack.Transaction, outcome *WebhookOutcome) {
	classification := Classify(tx)
	outcome.Classification = &classification
	outcome.Reference = tx.Reference

	switch classification.Kind {
	case KindDonation:
		outcome.Effects = s.recordDonation(ctx, tx)
		outcome.Message = "Donation recorded"
	case KindSubscription:
		outcome.Effects = s.recordSubscription(ctx, tx, classification.PaymentType)
		outcome.Message = "Subscription payment recorded"
	default:
		s.logger.Warn("Ambiguous payment acknowledged without records",
			zap.String("reference", tx.Reference),
			zap.String("paymentType", classification.PaymentType),
			zap.String("rule", classification.Rule),
		)
		outcome.Message = "Payment acknowledged; no record created for ambiguous payment type"
	}
}

func (s *webhookService) recordDonation(ctx context.Context, tx paystack.Transaction) []EffectResult {
	donation := DonationFromTransaction(tx)
	upsert := EffectResult{Effect: EffectDonationUpsert}
	saved, created, err := s.donations.CreateOrUpdate(ctx, donation)
	if err != nil {
		upsert.Err = err
	} else {
		upsert.RecordID, upsert.Created = saved.ID, created
	}

	email := EffectResult{Effect: EffectDonationEmail, RecordID: upsert.RecordID}
	receipt := mailer.DonationReceipt{
		Recipient: donation.Email,
		Name:      nameOf(tx),
		Amount:    donation.Amount,
		Currency:  tx.Currency,
		Reference: tx.Reference,
	}
	switch err := s.donations.SendConfirmation(ctx, receipt); {
	case err == nil:
	case errors.Is(err, ErrMailerDisabled), errors.Is(err, ErrNoDeliverableMail):
		email.Skipped = err.Error()
	default:
		email.Err = err
	}
	return []EffectResult{upsert, email}
}

func (s *webhookService) recordSubscription(ctx context.Context, tx paystack.Transaction, paymentType string) []EffectResult {
	subscriberResult := EffectResult{Effect: EffectSubscriberUpsert}
	subscriber, created, err := s.subscribers.CreateOrUpdate(ctx, SubscriberFromTransaction(tx, paymentType))
	if err != nil {
		subscriberResult.Err = err
	} else {
		subscriberResult.RecordID, subscriberResult.Created = subscriber.ID, created
	}
	results := []EffectResult{subscriberResult}

	if tx.Plan.PlanCode == "" {
		return results
	}
	subscriptionResult := EffectResult{Effect: EffectSubscriptionUpsert}
	if err != nil {
		subscriptionResult.Skipped = "subscriber upsert failed"
		return append(results, subscriptionResult)
	}
	saved, created, err := s.subscriptions.CreateOrUpdate(ctx, SubscriptionFromTransaction(tx, s.now()), subscriber.ID)
	if err != nil {
		subscriptionResult.Err = err
	} else {
		subscriptionResult.RecordID, subscriptionResult.Created = saved.ID, created
	}
	return append(results, subscriptionResult)
}

func (s *webhookService) logOutcome(outcome *WebhookOutcome) {
	fields := []zap.Field{
		zap.String("eventID", outcome.EventID),
		zap.String("event", outcome.Event),
		zap.String("reference", outcome.Reference),
	}
	if c := outcome.Classification; c != nil {
		fields = append(fields, zap.String("classification", string(c.Kind)), zap.String("rule", c.Rule))
	}
	failed := false
	for _, effect := range outcome.Effects {
		switch {
		case effect.Err != nil:
			failed = true
			fields = append(fields, zap.String(effect.Effect, "error: "+effect.record().Error))
		case effect.Skipped != "":
			fields = append(fields, zap.String(effect.Effect, "skipped: "+effect.Skipped))
		default:
			fields = append(fields, zap.String(effect.Effect, "ok "+effect.RecordID))
		}
	}
	if failed {
		s.logger.Error("Paystack webhook processed with failures", fields...)
		return
	}
	s.logger.Info("Paystack webhook processed", fields...)
}

func (s *webhookService) recordEvent(ctx context.Context, entry *models.WebhookEvent) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to store webhook event", zap.String("eventID", entry.ID), zap.Error(err))
	}
}

func (s *webhookService) publish(entry *models.WebhookEvent) {
	if s.queue == nil || s.queueName == "" {
		return
	}
	body, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("Failed to encode webhook outcome", zap.String("eventID", entry.ID), zap.Error(err))
		return
	}
	if err := s.queue.Publish(s.queueName, body); err != nil {
		s.logger.Warn("Failed to publish webhook outcome", zap.String("eventID", entry.ID), zap.String("queue", s.queueName), zap.Error(err))
	}
}
