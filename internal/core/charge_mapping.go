package core

import (
	"strings"
	"time"

	"paystack-sync/internal/models"
	"paystack-sync/internal/paystack"
)

var (
	phoneKeys    = []string{"phone", "phone_number", "phoneNumber", "mobile_number"}
	whatsAppKeys = []string{"whatsapp_number", "whatsapp", "whatsappNumber"}
	nameKeys     = []string{"full_name", "fullName", "name"}
)

// paymentTime is paid_at, falling back to created_at.
func paymentTime(tx paystack.Transaction) (time.Time, bool) {
	if t, ok := parseTimestamp(tx.PaidAt); ok {
		return t, true
	}
	return parseTimestamp(tx.CreatedAt)
}

func paymentTimestamp(tx paystack.Transaction) string {
	if tx.PaidAt != "" {
		return tx.PaidAt
	}
	return tx.CreatedAt
}

func phoneOf(tx paystack.Transaction) string {
	if p := tx.Metadata.Lookup(phoneKeys...); p != "" {
		return p
	}
	return strings.TrimSpace(tx.Customer.Phone)
}

func nameOf(tx paystack.Transaction) string {
	if n := tx.Metadata.Lookup(nameKeys...); n != "" {
		return n
	}
	return tx.Customer.FullName()
}

func emailOf(tx paystack.Transaction) string {
	return strings.ToLower(strings.TrimSpace(tx.Customer.Email))
}

// DonationFromTransaction builds the Donations row for a charge.
func DonationFromTransaction(tx paystack.Transaction) *models.Donation {
	return &models.Donation{
		Email:            emailOf(tx),
		Phone:            phoneOf(tx),
		Amount:           SubunitsToMajor(tx.Amount),
		PaymentDate:      FormatDate(paymentTimestamp(tx)),
		PaymentReference: tx.Reference,
	}
}

// SubscriberFromTransaction builds the Subscribers row for a charge.
func SubscriberFromTransaction(tx paystack.Transaction, paymentType string) *models.Subscriber {
	return &models.Subscriber{
		FullName:             nameOf(tx),
		Email:                emailOf(tx),
		Phone:                phoneOf(tx),
		TransactionReference: tx.Reference,
		Amount:               SubunitsToMajor(tx.Amount),
		Currency:             tx.Currency,
		Status:               tx.Status,
		PaymentType:          paymentType,
		PaidAt:               FormatTimestamp(paymentTimestamp(tx)),
		SubscriptionCode:     tx.Metadata.Lookup("subscription_code"),
		PlanCode:             tx.Plan.PlanCode,
		CustomerCode:         tx.Customer.CustomerCode,
		CreatedAt:            FormatTimestamp(tx.CreatedAt),
	}
}

// SubscriptionFromTransaction builds the Subscriptions row for a plan-bearing
// charge. The expiration window starts on the payment date, or on now when
// the charge carries no usable timestamp.
func SubscriptionFromTransaction(tx paystack.Transaction, now time.Time) *models.Subscription {
	pkg := MapPlanToSubscriptionPackage(tx.Plan, &tx.Metadata)
	paidOn, ok := paymentTime(tx)
	if !ok {
		paidOn = now
	}

	whatsApp := tx.Metadata.Lookup(whatsAppKeys...)
	if whatsApp == "" {
		whatsApp = phoneOf(tx)
	}
	name := nameOf(tx)
	if name == "" {
		name = emailOf(tx)
	}

	return &models.Subscription{
		Name:           name,
		Email:          emailOf(tx),
		WhatsAppNumber: whatsApp,
		Package:        pkg,
		AmountPaid:     SubunitsToMajor(tx.Amount),
		ExpirationDate: ExpirationDate(paidOn, pkg),
	}
}
