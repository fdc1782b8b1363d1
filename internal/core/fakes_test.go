package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"paystack-sync/internal/db"
	"paystack-sync/internal/models"
	"paystack-sync/internal/paystack"
	"paystack-sync/pkg/mailer"
)

// memoryBase is an in-memory stand-in for the three Airtable tables.
type memoryBase struct {
	seq           int
	subscribers   map[string]*models.Subscriber
	subscriptions map[string]*models.Subscription
	donations     map[string]*models.Donation

	createSubscriberErr   error
	createSubscriptionErr error
	createDonationErr     error
	linkErr               error
}

func newMemoryBase() *memoryBase {
	return &memoryBase{
		subscribers:   map[string]*models.Subscriber{},
		subscriptions: map[string]*models.Subscription{},
		donations:     map[string]*models.Donation{},
	}
}

func (b *memoryBase) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s%03d", prefix, b.seq)
}

func (b *memoryBase) writes() int {
	return len(b.subscribers) + len(b.subscriptions) + len(b.donations)
}

type memSubscriberRepo struct{ b *memoryBase }

func (r memSubscriberRepo) GetByID(_ context.Context, id string) (*models.Subscriber, error) {
	s, ok := r.b.subscribers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r memSubscriberRepo) FindByEmail(_ context.Context, email string) (*models.Subscriber, error) {
	for _, s := range r.b.subscribers {
		if email != "" && strings.EqualFold(s.Email, email) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r memSubscriberRepo) FindByPhone(_ context.Context, phone string) (*models.Subscriber, error) {
	for _, s := range r.b.subscribers {
		if phone != "" && s.Phone == phone {
			cp := *s
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r memSubscriberRepo) Create(_ context.Context, s *models.Subscriber) (*models.Subscriber, error) {
	if r.b.createSubscriberErr != nil {
		return nil, r.b.createSubscriberErr
	}
	cp := *s
	cp.ID = r.b.nextID("recSUB")
	r.b.subscribers[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memSubscriberRepo) Update(_ context.Context, s *models.Subscriber) (*models.Subscriber, error) {
	existing, ok := r.b.subscribers[s.ID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if s.Email != "" {
		existing.Email = s.Email
	}
	if s.FullName != "" {
		existing.FullName = s.FullName
	}
	if s.TransactionReference != "" {
		existing.TransactionReference = s.TransactionReference
	}
	if s.Amount != 0 {
		existing.Amount = s.Amount
	}
	if len(s.SubscriptionIDs) > 0 {
		existing.SubscriptionIDs = s.SubscriptionIDs
	}
	out := *existing
	return &out, nil
}

func (r memSubscriberRepo) SetSubscriptionLinks(_ context.Context, id string, ids []string) error {
	if r.b.linkErr != nil {
		return r.b.linkErr
	}
	s, ok := r.b.subscribers[id]
	if !ok {
		return db.ErrNotFound
	}
	s.SubscriptionIDs = append([]string(nil), ids...)
	return nil
}

type memSubscriptionRepo struct{ b *memoryBase }

func (r memSubscriptionRepo) GetByID(_ context.Context, id string) (*models.Subscription, error) {
	s, ok := r.b.subscriptions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r memSubscriptionRepo) Create(_ context.Context, s *models.Subscription) (*models.Subscription, error) {
	if r.b.createSubscriptionErr != nil {
		return nil, r.b.createSubscriptionErr
	}
	cp := *s
	cp.ID = r.b.nextID("recSUBN")
	r.b.subscriptions[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memSubscriptionRepo) Update(_ context.Context, s *models.Subscription) (*models.Subscription, error) {
	existing, ok := r.b.subscriptions[s.ID]
	if !ok {
		return nil, db.ErrNotFound
	}
	links := existing.SubscriberIDs
	cp := *s
	if len(cp.SubscriberIDs) == 0 {
		cp.SubscriberIDs = links
	}
	r.b.subscriptions[s.ID] = &cp
	out := cp
	return &out, nil
}

type memDonationRepo struct{ b *memoryBase }

func (r memDonationRepo) FindByReference(_ context.Context, ref string) (*models.Donation, error) {
	for _, d := range r.b.donations {
		if ref != "" && d.PaymentReference == ref {
			cp := *d
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r memDonationRepo) Create(_ context.Context, d *models.Donation) (*models.Donation, error) {
	if r.b.createDonationErr != nil {
		return nil, r.b.createDonationErr
	}
	cp := *d
	cp.ID = r.b.nextID("recDON")
	r.b.donations[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memDonationRepo) Update(_ context.Context, d *models.Donation) (*models.Donation, error) {
	if _, ok := r.b.donations[d.ID]; !ok {
		return nil, db.ErrNotFound
	}
	cp := *d
	r.b.donations[d.ID] = &cp
	out := cp
	return &out, nil
}

type memEventRepo struct {
	events []*models.WebhookEvent
	err    error
}

func (r *memEventRepo) Create(_ context.Context, e *models.WebhookEvent) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	cp := *e
	r.events = append(r.events, &cp)
	return e.ID, nil
}

func (r *memEventRepo) ListRecent(_ context.Context, limit int) ([]*models.WebhookEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*models.WebhookEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}

type fakeMailer struct {
	sent []mailer.DonationReceipt
	err  error
}

func (m *fakeMailer) SendDonationConfirmation(_ context.Context, r mailer.DonationReceipt) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, r)
	return nil
}

type fakeQueue struct {
	published map[string][][]byte
	err       error
}

func (q *fakeQueue) Publish(queueName string, body []byte) error {
	if q.err != nil {
		return q.err
	}
	if q.published == nil {
		q.published = map[string][][]byte{}
	}
	q.published[queueName] = append(q.published[queueName], body)
	return nil
}

func (q *fakeQueue) Close() error { return nil }

type fakePaystack struct {
	transactionPages [][]paystack.Transaction
	subscriptions    []paystack.Subscription
	txCalls          []paystack.ListParams
	subCalls         int
	err              error
}

func (f *fakePaystack) ListTransactions(_ context.Context, p paystack.ListParams) (*paystack.TransactionList, error) {
	f.txCalls = append(f.txCalls, p)
	if f.err != nil {
		return nil, f.err
	}
	list := &paystack.TransactionList{}
	list.Meta.PageCount = paystack.FlexInt(len(f.transactionPages))
	list.Meta.Page = paystack.FlexInt(p.Page)
	if p.Page >= 1 && p.Page <= len(f.transactionPages) {
		list.Data = f.transactionPages[p.Page-1]
	}
	return list, nil
}

func (f *fakePaystack) ListSubscriptions(_ context.Context, _ paystack.ListParams) (*paystack.SubscriptionList, error) {
	f.subCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &paystack.SubscriptionList{Data: f.subscriptions}, nil
}

type memCache struct {
	values map[string]string
	sets   int
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	return c.values[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.values == nil {
		c.values = map[string]string{}
	}
	s, ok := value.(string)
	if !ok {
		return errors.New("memCache stores strings only")
	}
	c.values[key] = s
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memCache) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
