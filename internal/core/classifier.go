package core

import (
	"strings"

	"paystack-sync/internal/paystack"
)

// PaymentKind is the single outcome a charge.success resolves to.
type PaymentKind string

const (
	KindDonation     PaymentKind = "donation"
	KindSubscription PaymentKind = "subscription"
	KindIgnored      PaymentKind = "ignored"
)

// defaultPaymentType is assumed when checkout sent no payment type.
const defaultPaymentType = "channel"

// Classification is the result of running a charge through the rule list.
type Classification struct {
	Kind PaymentKind
	// Rule names the rule that matched.
	Rule string
	// PaymentType is the label as sent by checkout, or "channel" when absent.
	PaymentType string
}

// paymentFacts are the charge attributes the rules look at.
type paymentFacts struct {
	paymentType    string // normalized: lowercase, trimmed, defaulted
	typeSupplied   bool
	hasPlan        bool
	callbackURL    string // lowercase
	paymentTypeRaw string
}

func (f paymentFacts) typeContains(needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(f.paymentType, n) {
			return true
		}
	}
	return false
}

type classificationRule struct {
	name    string
	kind    PaymentKind
	matches func(f paymentFacts) bool
}

// classificationRules is evaluated top to bottom; the first match wins.
var classificationRules = []classificationRule{
	{
		name: "donation-payment-type",
		kind: KindDonation,
		matches: func(f paymentFacts) bool {
			return f.typeContains("donation", "pour into")
		},
	},
	{
		name: "donation-keyword-without-plan",
		kind: KindDonation,
		matches: func(f paymentFacts) bool {
			return !f.hasPlan && f.typeContains("pour", "donation")
		},
	},
	{
		name: "donation-callback-url",
		kind: KindDonation,
		matches: func(f paymentFacts) bool {
			return !f.hasPlan && !f.typeSupplied && strings.Contains(f.callbackURL, "donation-success")
		},
	},
	{
		name: "ambiguous-channel-payment",
		kind: KindIgnored,
		matches: func(f paymentFacts) bool {
			if f.hasPlan || f.typeContains("join", "community", "subscription") {
				return false
			}
			switch f.paymentType {
			case "channel", "unknown", "":
				return true
			}
			return false
		},
	},
	{
		name:    "subscription-payment",
		kind:    KindSubscription,
		matches: func(paymentFacts) bool { return true },
	},
}

// PaymentTypeOf returns the checkout payment type label: the payment_type
// custom field, else metadata.payment_type, else "".
func PaymentTypeOf(tx paystack.Transaction) string {
	if v, ok := tx.Metadata.CustomField("payment_type"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := tx.Metadata.Value("payment_type"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// CallbackURLOf returns the URL the customer was sent back to after paying.
func CallbackURLOf(tx paystack.Transaction) string {
	if tx.Authorization.CallbackURL != "" {
		return tx.Authorization.CallbackURL
	}
	return tx.Metadata.Lookup("callback_url", "referrer")
}

func factsOf(tx paystack.Transaction) paymentFacts {
	raw := PaymentTypeOf(tx)
	f := paymentFacts{
		paymentTypeRaw: raw,
		typeSupplied:   raw != "",
		hasPlan:        strings.TrimSpace(tx.Plan.PlanCode) != "",
		callbackURL:    strings.ToLower(CallbackURLOf(tx)),
	}
	if f.typeSupplied {
		f.paymentType = strings.ToLower(raw)
	} else {
		f.paymentType = defaultPaymentType
	}
	return f
}

// Classify decides whether a successful charge is a donation, a community
// subscription payment, or an event to acknowledge without recording.
func Classify(tx paystack.Transaction) Classification {
	f := factsOf(tx)
	label := f.paymentTypeRaw
	if label == "" {
		label = defaultPaymentType
	}
	for _, rule := range classificationRules {
		if rule.matches(f) {
			return Classification{Kind: rule.kind, Rule: rule.name, PaymentType: label}
		}
	}
	// Unreachable: the last rule always matches.
	return Classification{Kind: KindIgnored, Rule: "none", PaymentType: label}
}
