package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"paystack-sync/internal/db"
	"paystack-sync/internal/models"
	"paystack-sync/pkg/mailer"
)

var (
	ErrDonationSync      = errors.New("donation sync failed")
	ErrMailerDisabled    = errors.New("mailer is not configured")
	ErrNoDeliverableMail = errors.New("donor has no deliverable email address")
)

// donationService implements the DonationService interface.
type donationService struct {
	repo   db.DonationRepository
	mailer EmailSender // nil when SMTP is not configured
	logger *zap.Logger
}

// NewDonationService creates a new DonationService. mail may be nil.
func NewDonationService(repo db.DonationRepository, mail EmailSender, logger *zap.Logger) DonationService {
	return &donationService{repo: repo, mailer: mail, logger: logger}
}

// CreateOrUpdate writes a donation, updating the row that already carries its
// payment reference so redelivered webhooks do not double count.
func (s *donationService) CreateOrUpdate(ctx context.Context, donation *models.Donation) (*models.Donation, bool, error) {
	if donation == nil {
		return nil, false, fmt.Errorf("%w: nil donation", ErrDonationSync)
	}

	if donation.PaymentReference != "" {
		existing, err := s.repo.FindByReference(ctx, donation.PaymentReference)
		switch {
		case err == nil:
			patch := *donation
			patch.ID = existing.ID
			updated, err := s.repo.Update(ctx, &patch)
			if err != nil {
				return nil, false, fmt.Errorf("%w: %w", ErrDonationSync, err)
			}
			s.logger.Info("Donation updated", zap.String("recordID", updated.ID), zap.String("reference", donation.PaymentReference))
			return updated, false, nil
		case !errors.Is(err, db.ErrNotFound):
			return nil, false, fmt.Errorf("%w: lookup: %w", ErrDonationSync, err)
		}
	}

	created, err := s.repo.Create(ctx, donation)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrDonationSync, err)
	}
	s.logger.Info("Donation created", zap.String("recordID", created.ID), zap.String("reference", donation.PaymentReference))
	return created, true, nil
}

// BatchCreateOrUpdate upserts each donation in turn, never aborting the batch.
func (s *donationService) BatchCreateOrUpdate(ctx context.Context, donations []*models.Donation) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(donations))
	for _, d := range donations {
		key := ""
		if d != nil {
			key = d.PaymentReference
		}
		saved, created, err := s.CreateOrUpdate(ctx, d)
		recordID := ""
		if saved != nil {
			recordID = saved.ID
		}
		if err != nil {
			s.logger.Warn("Batch donation upsert failed", zap.String("reference", key), zap.Error(err))
		}
		results = append(results, batchResult(key, recordID, created, err))
	}
	return results
}

// SendConfirmation emails the donor a receipt.
func (s *donationService) SendConfirmation(ctx context.Context, receipt mailer.DonationReceipt) error {
	if s.mailer == nil {
		return ErrMailerDisabled
	}
	if !IsDeliverableEmail(receipt.Recipient) {
		return fmt.Errorf("%w: %q", ErrNoDeliverableMail, receipt.Recipient)
	}
	if err := s.mailer.SendDonationConfirmation(ctx, receipt); err != nil {
		return fmt.Errorf("failed to send donation confirmation for '%s': %w", receipt.Reference, err)
	}
	return nil
}
