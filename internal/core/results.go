package core

import (
	"paystack-sync/internal/airtable"
	"paystack-sync/internal/models"
)

// Side effects a webhook delivery can trigger.
const (
	EffectDonationUpsert     = "donation.upsert"
	EffectDonationEmail      = "donation.email"
	EffectSubscriberUpsert   = "subscriber.upsert"
	EffectSubscriptionUpsert = "subscription.upsert"
)

// EffectResult is the outcome of one side effect. Err is nil on success.
type EffectResult struct {
	Effect   string
	RecordID string
	Created  bool
	Skipped  string // reason the effect did not run
	Err      error
}

// OK reports whether the effect ran and succeeded.
func (r EffectResult) OK() bool { return r.Err == nil && r.Skipped == "" }

func (r EffectResult) record() models.EffectRecord {
	rec := models.EffectRecord{Effect: r.Effect, RecordID: r.RecordID, OK: r.OK()}
	if r.Err != nil {
		rec.Error = airtable.ErrorMessage(r.Err)
	} else if r.Skipped != "" {
		rec.Error = "skipped: " + r.Skipped
	}
	return rec
}

// BatchItemResult is the outcome of one item of a batch upsert.
type BatchItemResult struct {
	Key      string `json:"key"`
	RecordID string `json:"recordId,omitempty"`
	Created  bool   `json:"created"`
	Error    string `json:"error,omitempty"`
}

func batchResult(key, recordID string, created bool, err error) BatchItemResult {
	res := BatchItemResult{Key: key, RecordID: recordID, Created: created}
	if err != nil {
		res.Error = airtable.ErrorMessage(err)
	}
	return res
}
