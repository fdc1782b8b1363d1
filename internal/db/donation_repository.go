package db

import (
	"context"
	"errors"
	"fmt"

	"paystack-sync/internal/airtable"
	"paystack-sync/internal/models"
)

// Donations table columns.
const (
	DonationEmail            = "Email"
	DonationPhone            = "Phone"
	DonationAmount           = "Amount"
	DonationPaymentDate      = "Payment Date"
	DonationPaymentReference = "Payment Reference"
)

type airtableDonationRepository struct {
	table *airtable.Table
}

// NewAirtableDonationRepository creates a DonationRepository on table.
func NewAirtableDonationRepository(table *airtable.Table) DonationRepository {
	return &airtableDonationRepository{table: table}
}

func (r *airtableDonationRepository) FindByReference(ctx context.Context, reference string) (*models.Donation, error) {
	if reference == "" {
		return nil, fmt.Errorf("empty reference: %w", ErrNotFound)
	}
	recs, err := r.table.Select(ctx, airtable.SelectOptions{
		FilterByFormula: airtable.FieldEquals(DonationPaymentReference, reference),
		MaxRecords:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query donation '%s': %w", reference, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("donation '%s' not found: %w", reference, ErrNotFound)
	}
	return donationFromRecord(recs[0]), nil
}

func (r *airtableDonationRepository) Create(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	rec, err := r.table.Create(ctx, donationFields(donation))
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}
	return donationFromRecord(rec), nil
}

func (r *airtableDonationRepository) Update(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	if donation.ID == "" {
		return nil, errors.New("donation ID cannot be empty for Update operation")
	}
	rec, err := r.table.Update(ctx, donation.ID, donationFields(donation))
	if err != nil {
		return nil, fmt.Errorf("failed to update donation '%s': %w", donation.ID, err)
	}
	return donationFromRecord(rec), nil
}

func donationFields(d *models.Donation) map[string]interface{} {
	f := fieldSet{}
	f.str(DonationEmail, d.Email)
	f.str(DonationPhone, d.Phone)
	// Amount is written even when zero.
	f[DonationAmount] = d.Amount
	f.str(DonationPaymentDate, d.PaymentDate)
	f.str(DonationPaymentReference, d.PaymentReference)
	return f
}

func donationFromRecord(rec *airtable.Record) *models.Donation {
	fields := rec.Fields
	return &models.Donation{
		ID:               rec.ID,
		Email:            fieldString(fields, DonationEmail),
		Phone:            fieldString(fields, DonationPhone),
		Amount:           fieldFloat(fields, DonationAmount),
		PaymentDate:      fieldString(fields, DonationPaymentDate),
		PaymentReference: fieldString(fields, DonationPaymentReference),
	}
}
