package db

import (
	"fmt"
	"strconv"
	"strings"

	"paystack-sync/internal/airtable"
	"paystack-sync/internal/config"
)

// AirtableBase bundles the repositories backed by one Airtable base.
type AirtableBase struct {
	Subscribers   SubscriberRepository
	Subscriptions SubscriptionRepository
	Donations     DonationRepository
}

// GetAirtableBase builds the Airtable client and table repositories from config.
func GetAirtableBase(cfg *config.Config) (*AirtableBase, error) {
	if cfg == nil {
		return nil, fmt.Errorf("GetAirtableBase: config cannot be nil")
	}
	if cfg.AirtableAPIKey == "" || cfg.AirtableBaseID == "" {
		return nil, fmt.Errorf("GetAirtableBase: AIRTABLE_API_KEY and AIRTABLE_BASE_ID are required")
	}
	client := airtable.NewClient(cfg.AirtableBaseURL, cfg.AirtableBaseID, cfg.AirtableAPIKey)
	return NewAirtableBase(client, cfg.AirtableSubscribersTable, cfg.AirtableSubscriptionsTable, cfg.AirtableDonationsTable), nil
}

// NewAirtableBase wires repositories on the named tables of client's base.
func NewAirtableBase(client *airtable.Client, subscribersTable, subscriptionsTable, donationsTable string) *AirtableBase {
	return &AirtableBase{
		Subscribers:   NewAirtableSubscriberRepository(client.Table(subscribersTable)),
		Subscriptions: NewAirtableSubscriptionRepository(client.Table(subscriptionsTable)),
		Donations:     NewAirtableDonationRepository(client.Table(donationsTable)),
	}
}

// fieldSet accumulates Airtable fields, dropping absent values so that
// unset optional columns are omitted rather than sent as null.
type fieldSet map[string]interface{}

func (f fieldSet) str(name, value string) {
	if v := strings.TrimSpace(value); v != "" {
		f[name] = v
	}
}

func (f fieldSet) num(name string, value float64) {
	if value != 0 {
		f[name] = value
	}
}

func (f fieldSet) links(name string, ids []string) {
	if ids != nil {
		f[name] = ids
	}
}

func fieldString(fields map[string]interface{}, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func fieldFloat(fields map[string]interface{}, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

func fieldLinks(fields map[string]interface{}, name string) []string {
	switch v := fields[name].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				ids = append(ids, s)
			}
		}
		return ids
	default:
		return nil
	}
}

func wrapFind(err error, what, key string) error {
	if airtable.IsNotFound(err) {
		return fmt.Errorf("%s '%s' not found: %w", what, key, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s '%s': %w", what, key, err)
}
