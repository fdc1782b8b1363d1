package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"paystack-sync/internal/crypto"
	"paystack-sync/internal/models"
)

const testSecret = "sk_test_webhook"

type webhookFixture struct {
	base   *memoryBase
	mail   *fakeMailer
	events *memEventRepo
	queue  *fakeQueue
	svc    WebhookService
}

func newWebhookFixture(t *testing.T, secret string) *webhookFixture {
	t.Helper()
	logger := zap.NewNop()
	f := &webhookFixture{
		base:   newMemoryBase(),
		mail:   &fakeMailer{},
		events: &memEventRepo{},
		queue:  &fakeQueue{},
	}
	reconciler := NewSubscriptionService(memSubscriptionRepo{f.base}, memSubscriberRepo{f.base}, logger).(*subscriptionService)
	reconciler.now = fixedClock(reconcileNow)
	ws := NewWebhookService(
		secret,
		NewSubscriberService(memSubscriberRepo{f.base}, logger),
		reconciler,
		NewDonationService(memDonationRepo{f.base}, f.mail, logger),
		logger,
		WithEventLog(f.events),
		WithOutcomePublisher(f.queue, "payments.outcomes"),
	).(*webhookService)
	ws.now = fixedClock(reconcileNow)
	f.svc = ws
	return f
}

func sign(t *testing.T, body string) string {
	t.Helper()
	sig, err := crypto.SignHMACSHA512(testSecret, []byte(body))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return sig
}

const donationBody = `{
  "event": "charge.success",
  "data": {
    "id": 1001,
    "status": "success",
    "reference": "don-ref-1",
    "amount": 10000,
    "currency": "GHS",
    "paid_at": "2024-06-01T12:00:00.000Z",
    "created_at": "2024-06-01T11:59:00.000Z",
    "metadata": {"custom_fields": [{"variable_name": "payment_type", "value": "Donation"}, {"variable_name": "phone", "value": "0201234567"}]},
    "customer": {"first_name": "Ama", "last_name": "Mensah", "email": "Ama@Gmail.com"},
    "plan": {}
  }
}`

const communityBody = `{
  "event": "charge.success",
  "data": {
    "id": 1002,
    "status": "success",
    "reference": "sub-ref-1",
    "amount": 30000,
    "currency": "GHS",
    "paid_at": "2024-06-01T12:00:00.000Z",
    "metadata": {"payment_type": "Join Community Subscription", "whatsapp_number": "+233201234567"},
    "customer": {"first_name": "Kofi", "last_name": "Boateng", "email": "kofi@gmail.com", "customer_code": "CUS_1"},
    "plan": {"plan_code": "PLN_q", "name": "Quarterly Community", "interval": "quarterly"}
  }
}`

func TestHandlePaystackWebhook_SignatureFailuresHaveNoSideEffects(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		signature string
		wantErr   error
	}{
		{"missing header", testSecret, "", ErrWebhookSignatureMissing},
		{"wrong signature", testSecret, "deadbeef", ErrWebhookSignature},
		{"signed with another key", testSecret, func() string { s, _ := crypto.SignHMACSHA512("other", []byte(donationBody)); return s }(), ErrWebhookSignature},
		{"secret not configured", "", "deadbeef", ErrWebhookSecretMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWebhookFixture(t, tt.secret)
			outcome, err := f.svc.HandlePaystackWebhook(context.Background(), tt.signature, []byte(donationBody))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if outcome != nil {
				t.Errorf("outcome = %+v, want nil", outcome)
			}
			if n := f.base.writes(); n != 0 {
				t.Errorf("records written = %d, want 0", n)
			}
			if len(f.mail.sent) != 0 || len(f.events.events) != 0 || len(f.queue.published) != 0 {
				t.Error("no mail, event log or publish expected")
			}
		})
	}
}

func TestHandlePaystackWebhook_MalformedPayload(t *testing.T) {
	f := newWebhookFixture(t, testSecret)
	body := `{"data": {}}`
	if _, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, body), []byte(body)); !errors.Is(err, ErrWebhookPayload) {
		t.Errorf("err = %v, want ErrWebhookPayload", err)
	}
}

func TestHandlePaystackWebhook_Donation(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	outcome, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, donationBody), []byte(donationBody))
	if err != nil {
		t.Fatalf("HandlePaystackWebhook: %v", err)
	}
	if outcome.Classification == nil || outcome.Classification.Kind != KindDonation {
		t.Fatalf("classification = %+v, want donation", outcome.Classification)
	}
	if len(f.base.donations) != 1 || len(f.base.subscribers) != 0 || len(f.base.subscriptions) != 0 {
		t.Fatalf("rows: donations=%d subscribers=%d subscriptions=%d, want 1/0/0",
			len(f.base.donations), len(f.base.subscribers), len(f.base.subscriptions))
	}
	for _, d := range f.base.donations {
		want := models.Donation{ID: d.ID, Email: "ama@gmail.com", Phone: "0201234567", Amount: 100, PaymentDate: "2024-06-01", PaymentReference: "don-ref-1"}
		if *d != want {
			t.Errorf("donation = %+v, want %+v", *d, want)
		}
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0].Amount != 100 || f.mail.sent[0].Currency != "GHS" {
		t.Errorf("receipts = %+v", f.mail.sent)
	}

	// A redelivery updates the same donation.
	if _, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, donationBody), []byte(donationBody)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(f.base.donations) != 1 {
		t.Errorf("donations after redelivery = %d, want 1", len(f.base.donations))
	}
}

func TestHandlePaystackWebhook_DonationMailFailureIsReported(t *testing.T) {
	f := newWebhookFixture(t, testSecret)
	f.mail.err = errors.New("smtp down")

	outcome, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, donationBody), []byte(donationBody))
	if err != nil {
		t.Fatalf("mail failure must not fail the delivery: %v", err)
	}
	if len(outcome.Effects) != 2 || !outcome.Effects[0].OK() || outcome.Effects[1].Err == nil {
		t.Errorf("effects = %+v", outcome.Effects)
	}
	if len(f.base.donations) != 1 {
		t.Error("donation should still be recorded")
	}
}

func TestHandlePaystackWebhook_CommunitySubscription(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	outcome, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, communityBody), []byte(communityBody))
	if err != nil {
		t.Fatalf("HandlePaystackWebhook: %v", err)
	}
	if outcome.Classification.Kind != KindSubscription {
		t.Fatalf("classification = %+v", outcome.Classification)
	}
	if len(f.base.subscribers) != 1 || len(f.base.subscriptions) != 1 || len(f.base.donations) != 0 {
		t.Fatalf("rows: subscribers=%d subscriptions=%d donations=%d, want 1/1/0",
			len(f.base.subscribers), len(f.base.subscriptions), len(f.base.donations))
	}

	var subscriber *models.Subscriber
	for _, s := range f.base.subscribers {
		subscriber = s
	}
	if subscriber.Amount != 300 || subscriber.PlanCode != "PLN_q" || subscriber.PaymentType != "Join Community Subscription" {
		t.Errorf("subscriber = %+v", subscriber)
	}
	for _, sub := range f.base.subscriptions {
		if sub.Package != models.PackageThreeMonths || sub.ExpirationDate != "2024-09-01" || sub.AmountPaid != 300 {
			t.Errorf("subscription = %+v", sub)
		}
		if sub.WhatsAppNumber != "+233201234567" || sub.Name != "Kofi Boateng" {
			t.Errorf("subscription contact = %+v", sub)
		}
		if len(subscriber.SubscriptionIDs) != 1 || subscriber.SubscriptionIDs[0] != sub.ID {
			t.Errorf("subscriber links = %v, want [%s]", subscriber.SubscriptionIDs, sub.ID)
		}
	}
	if len(f.mail.sent) != 0 {
		t.Error("subscription payments do not send donation receipts")
	}
}

func TestHandlePaystackWebhook_AmbiguousPaymentWritesNothing(t *testing.T) {
	f := newWebhookFixture(t, testSecret)
	body := `{"event":"charge.success","data":{"reference":"amb-1","amount":5000,"metadata":{"payment_type":"channel"},"customer":{"email":"x@gmail.com"}}}`

	outcome, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, body), []byte(body))
	if err != nil {
		t.Fatalf("HandlePaystackWebhook: %v", err)
	}
	if outcome.Classification.Kind != KindIgnored || len(outcome.Effects) != 0 {
		t.Errorf("outcome = %+v", outcome)
	}
	if f.base.writes() != 0 {
		t.Errorf("records written = %d, want 0", f.base.writes())
	}
	if len(f.events.events) != 1 || f.events.events[0].Classification != "ignored" {
		t.Errorf("event log = %+v", f.events.events)
	}
}

func TestHandlePaystackWebhook_SubscriberFailureSkipsSubscription(t *testing.T) {
	f := newWebhookFixture(t, testSecret)
	f.base.createSubscriberErr = errors.New("INVALID_PERMISSIONS")

	outcome, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, communityBody), []byte(communityBody))
	if err != nil {
		t.Fatalf("HandlePaystackWebhook: %v", err)
	}
	if len(outcome.Effects) != 2 {
		t.Fatalf("effects = %+v", outcome.Effects)
	}
	if outcome.Effects[0].Err == nil || outcome.Effects[1].Skipped == "" {
		t.Errorf("effects = %+v", outcome.Effects)
	}
	if len(f.base.subscriptions) != 0 {
		t.Error("no subscription expected when the subscriber upsert fails")
	}
}

func TestHandlePaystackWebhook_OtherEventsAreAcknowledged(t *testing.T) {
	f := newWebhookFixture(t, testSecret)
	for _, body := range []string{
		`{"event":"charge.failed","data":{"reference":"f-1"}}`,
		`{"event":"subscription.disable","data":{"subscription_code":"SUB_1","status":"complete"}}`,
		`{"event":"transfer.success","data":{"id":1}}`,
	} {
		outcome, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, body), []byte(body))
		if err != nil {
			t.Fatalf("%s: %v", body, err)
		}
		if outcome.Message == "" || len(outcome.Effects) != 0 {
			t.Errorf("outcome = %+v", outcome)
		}
	}
	if f.base.writes() != 0 {
		t.Errorf("records written = %d, want 0", f.base.writes())
	}
	if len(f.events.events) != 3 {
		t.Errorf("event log size = %d, want 3", len(f.events.events))
	}
}

func TestHandlePaystackWebhook_RecordsAndPublishesOutcome(t *testing.T) {
	f := newWebhookFixture(t, testSecret)

	outcome, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, communityBody), []byte(communityBody))
	if err != nil {
		t.Fatalf("HandlePaystackWebhook: %v", err)
	}

	if len(f.events.events) != 1 {
		t.Fatalf("event log size = %d", len(f.events.events))
	}
	logged := f.events.events[0]
	if logged.ID != outcome.EventID || logged.Reference != "sub-ref-1" || logged.Amount != 300 || len(logged.Effects) != 2 {
		t.Errorf("logged event = %+v", logged)
	}

	msgs := f.queue.published["payments.outcomes"]
	if len(msgs) != 1 {
		t.Fatalf("published = %d messages, want 1", len(msgs))
	}
	var published models.WebhookEvent
	if err := json.Unmarshal(msgs[0], &published); err != nil {
		t.Fatalf("decode published outcome: %v", err)
	}
	if published.Classification != "subscription" || published.Rule != "subscription-payment" {
		t.Errorf("published = %+v", published)
	}

	// Event log and queue failures do not fail the delivery.
	f.events.err = errors.New("firestore unavailable")
	f.queue.err = errors.New("broker down")
	if _, err := f.svc.HandlePaystackWebhook(context.Background(), sign(t, communityBody), []byte(communityBody)); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}
